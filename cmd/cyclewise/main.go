// Command cyclewise is the local client: a passphrase-gated encrypted store
// of cycle data plus deterministic predictions over it.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cyclewise/cyclewise/internal/ai"
	"github.com/cyclewise/cyclewise/internal/app"
	"github.com/cyclewise/cyclewise/internal/crypto"
	"github.com/cyclewise/cyclewise/internal/errs"
	"github.com/cyclewise/cyclewise/internal/model"
	"github.com/cyclewise/cyclewise/internal/store"
	"github.com/cyclewise/cyclewise/internal/syncclient"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	UserID      string    `json:"user_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "cyclewise")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cyclewise")
}

func dbPath() string    { return filepath.Join(cfgDir(), "cyclewise.db") }
func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tf tokenFile) error {
	_ = os.MkdirAll(cfgDir(), 0o700)
	f, err := os.Create(tokenPath())
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tf)
}

func loadToken() (tokenFile, error) {
	var tf tokenFile
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return tf, err
	}
	if err := json.Unmarshal(b, &tf); err != nil {
		return tf, err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return tf, errors.New("no valid token (login required)")
	}
	return tf, nil
}

// ---- utils ----

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func passphrase(fs *flag.FlagSet) string {
	if f := fs.Lookup("pass"); f != nil && f.Value.String() != "" {
		return f.Value.String()
	}
	if v := os.Getenv("CYCLEWISE_PASSPHRASE"); v != "" {
		return v
	}
	fmt.Fprintln(os.Stderr, "need -pass or CYCLEWISE_PASSPHRASE")
	os.Exit(1)
	return ""
}

func parseDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		fail(fmt.Errorf("bad date %q (want YYYY-MM-DD): %w", s, err))
	}
	return t
}

// unlock opens the store and authenticates the passphrase against it.
func unlock(ctx context.Context, pass string) (*app.App, func()) {
	logger, _ := zap.NewProduction()
	st, err := store.Open(dbPath(), logger)
	if err != nil {
		fail(err)
	}
	a := app.New(st, logger)
	if err := a.Unlock(ctx, pass); err != nil {
		st.Close()
		if errors.Is(err, errs.ErrDecryptFailed) {
			fail(errors.New("invalid passphrase"))
		}
		fail(err)
	}
	return a, func() { _ = st.Close(); _ = logger.Sync() }
}

func usage() {
	fmt.Fprintf(os.Stderr, `cyclewise CLI
Usage:
  cyclewise <cmd> [args]

Local commands (all take -pass or CYCLEWISE_PASSPHRASE):
  status
  period-add  -start YYYY-MM-DD [-end YYYY-MM-DD] [-flow 1..5] [-notes s]
  period-list
  period-rm   -id <id>
  profile-set [-avg days] [-std days] [-luteal days] [-goal g] [-last YYYY-MM-DD]
  symptom-add -date YYYY-MM-DD -tags a,b,c [-intensity 1..5]
  mood-add    -date YYYY-MM-DD -mood 1..5
  breathing-add -date YYYY-MM-DD -protocol box -duration sec -cycles n
  predict
  phase
  insights
  suggest     -prompt text [-ai-addr URL]
  export      -out file
  import      -in file
  wipe        -yes

Passphrase tools:
  passcheck   -pass s
  passgen     [-n length]

Sync (against -addr, default localhost:8080):
  register    -u user -p password
  login       -u user -p password
  sync-push
  sync-pull

Other:
  version
`)
	os.Exit(2)
}

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands.
func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	switch cmd {

	case "version":
		fmt.Printf("cyclewise %s (%s)\n", version, buildDate)

	case "status":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		fs.String("pass", "", "data passphrase")
		_ = fs.Parse(args)
		a, done := unlock(ctx, passphrase(fs))
		defer done()
		printJSON(map[string]any{
			"periodLogs":  len(a.PeriodLogs),
			"predictions": len(a.Predictions),
			"stats":       a.Stats(),
			"phase":       a.Phase(time.Now()),
		})

	case "period-add":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		fs.String("pass", "", "data passphrase")
		start := fs.String("start", "", "start date YYYY-MM-DD")
		end := fs.String("end", "", "end date YYYY-MM-DD")
		flow := fs.Int("flow", 0, "flow intensity 1..5")
		notes := fs.String("notes", "", "notes")
		_ = fs.Parse(args)
		if *start == "" {
			fail(errors.New("need -start"))
		}
		a, done := unlock(ctx, passphrase(fs))
		defer done()
		var endP *time.Time
		if *end != "" {
			t := parseDate(*end)
			endP = &t
		}
		var flowP *int
		if *flow != 0 {
			flowP = flow
		}
		id, err := a.AddPeriodLog(ctx, parseDate(*start), endP, flowP, *notes)
		if err != nil {
			fail(err)
		}
		fmt.Println(id)

	case "period-list":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		fs.String("pass", "", "data passphrase")
		_ = fs.Parse(args)
		a, done := unlock(ctx, passphrase(fs))
		defer done()
		printJSON(a.PeriodLogs)

	case "period-rm":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		fs.String("pass", "", "data passphrase")
		id := fs.String("id", "", "period log id")
		_ = fs.Parse(args)
		if *id == "" {
			fail(errors.New("need -id"))
		}
		a, done := unlock(ctx, passphrase(fs))
		defer done()
		if err := a.DeletePeriodLog(ctx, *id); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "profile-set":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		fs.String("pass", "", "data passphrase")
		avg := fs.Float64("avg", 0, "average cycle length (20..40)")
		std := fs.Float64("std", -1, "cycle length std dev (0..10)")
		luteal := fs.Int("luteal", 0, "luteal phase days (10..16)")
		goal := fs.String("goal", "", "track|ttc|pregnant|postpartum|perimenopause")
		last := fs.String("last", "", "last known period start YYYY-MM-DD")
		_ = fs.Parse(args)
		a, done := unlock(ctx, passphrase(fs))
		defer done()
		err := a.UpdateHealthProfile(ctx, func(p *model.HealthProfile) {
			if *avg != 0 {
				p.CycleLengthAvg = *avg
			}
			if *std >= 0 {
				p.CycleLengthStd = *std
			}
			if *luteal != 0 {
				p.LutealDays = *luteal
			}
			if *goal != "" {
				p.Goal = model.TrackingGoal(*goal)
			}
			if *last != "" {
				t := parseDate(*last)
				p.LastPeriodDate = &t
			}
		})
		if err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "symptom-add":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		fs.String("pass", "", "data passphrase")
		date := fs.String("date", "", "date YYYY-MM-DD")
		tags := fs.String("tags", "", "comma-separated tags")
		intensity := fs.Int("intensity", 0, "intensity 1..5")
		notes := fs.String("notes", "", "notes")
		_ = fs.Parse(args)
		if *date == "" || *tags == "" {
			fail(errors.New("need -date and -tags"))
		}
		a, done := unlock(ctx, passphrase(fs))
		defer done()
		var intP *int
		if *intensity != 0 {
			intP = intensity
		}
		id, err := a.AddSymptomLog(ctx, parseDate(*date), strings.Split(*tags, ","), intP, *notes)
		if err != nil {
			fail(err)
		}
		fmt.Println(id)

	case "mood-add":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		fs.String("pass", "", "data passphrase")
		date := fs.String("date", "", "date YYYY-MM-DD")
		mood := fs.Int("mood", 0, "mood 1..5")
		notes := fs.String("notes", "", "notes")
		_ = fs.Parse(args)
		if *date == "" || *mood == 0 {
			fail(errors.New("need -date and -mood"))
		}
		a, done := unlock(ctx, passphrase(fs))
		defer done()
		id, err := a.AddMoodLog(ctx, parseDate(*date), *mood, nil, nil, *notes)
		if err != nil {
			fail(err)
		}
		fmt.Println(id)

	case "breathing-add":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		fs.String("pass", "", "data passphrase")
		date := fs.String("date", "", "date YYYY-MM-DD")
		protocol := fs.String("protocol", "box", "box|4-7-8|coherent|custom")
		duration := fs.Int("duration", 0, "duration seconds (30..1800)")
		cycles := fs.Int("cycles", 0, "breath cycles (1..100)")
		_ = fs.Parse(args)
		if *date == "" || *duration == 0 || *cycles == 0 {
			fail(errors.New("need -date, -duration and -cycles"))
		}
		a, done := unlock(ctx, passphrase(fs))
		defer done()
		id, err := a.AddBreathingSession(ctx, model.BreathingSession{
			Date:        parseDate(*date),
			Protocol:    *protocol,
			DurationSec: *duration,
			Cycles:      *cycles,
		})
		if err != nil {
			fail(err)
		}
		fmt.Println(id)

	case "predict":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		fs.String("pass", "", "data passphrase")
		_ = fs.Parse(args)
		a, done := unlock(ctx, passphrase(fs))
		defer done()
		printJSON(a.Predictions)

	case "phase":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		fs.String("pass", "", "data passphrase")
		_ = fs.Parse(args)
		a, done := unlock(ctx, passphrase(fs))
		defer done()
		printJSON(a.Phase(time.Now()))

	case "insights":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		fs.String("pass", "", "data passphrase")
		_ = fs.Parse(args)
		a, done := unlock(ctx, passphrase(fs))
		defer done()
		printJSON(a.Insights())

	case "suggest":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		fs.String("pass", "", "data passphrase")
		prompt := fs.String("prompt", "", "prompt text")
		aiAddr := fs.String("ai-addr", "http://localhost:3000", "insight service base URL")
		_ = fs.Parse(args)
		if *prompt == "" {
			fail(errors.New("need -prompt"))
		}
		a, done := unlock(ctx, passphrase(fs))
		defer done()
		text, err := ai.NewClient(*aiAddr).Suggest(ctx, *prompt, map[string]any{
			"stats":       a.Stats(),
			"phase":       a.Phase(time.Now()),
			"predictions": a.Predictions,
		})
		if err != nil {
			// insight is optional; report and move on
			fmt.Fprintln(os.Stderr, "insight unavailable:", err)
			os.Exit(1)
		}
		fmt.Println(text)

	case "export":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		fs.String("pass", "", "data passphrase")
		out := fs.String("out", "-", "output file, - for stdout")
		_ = fs.Parse(args)
		a, done := unlock(ctx, passphrase(fs))
		defer done()
		snap, err := a.Export(ctx)
		if err != nil {
			fail(err)
		}
		b, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			fail(err)
		}
		if *out == "-" {
			fmt.Println(string(b))
		} else if err := os.WriteFile(*out, b, 0o600); err != nil {
			fail(err)
		}

	case "import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		fs.String("pass", "", "data passphrase")
		in := fs.String("in", "-", "input file, - for stdin")
		_ = fs.Parse(args)
		var b []byte
		var err error
		if *in == "-" {
			b, err = io.ReadAll(os.Stdin)
		} else {
			b, err = os.ReadFile(*in)
		}
		if err != nil {
			fail(err)
		}
		var snap model.Snapshot
		if err := json.Unmarshal(b, &snap); err != nil {
			fail(err)
		}
		a, done := unlock(ctx, passphrase(fs))
		defer done()
		if err := a.Import(ctx, &snap); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "wipe":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		fs.String("pass", "", "data passphrase")
		yes := fs.Bool("yes", false, "confirm irreversible wipe")
		_ = fs.Parse(args)
		if !*yes {
			fail(errors.New("wipe destroys all local data and cannot be undone; pass -yes to confirm"))
		}
		a, done := unlock(ctx, passphrase(fs))
		defer done()
		if err := a.Wipe(ctx); err != nil {
			fail(err)
		}
		fmt.Println("wiped")

	case "passcheck":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		pass := fs.String("pass", "", "passphrase to check")
		_ = fs.Parse(args)
		printJSON(crypto.ValidatePassphrase(*pass))

	case "passgen":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		n := fs.Int("n", 32, "length")
		_ = fs.Parse(args)
		p, err := crypto.GeneratePassphrase(*n)
		if err != nil {
			fail(err)
		}
		fmt.Println(p)

	case "register":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		addr := fs.String("addr", "http://localhost:8080", "sync server base URL")
		u := fs.String("u", "", "username")
		p := fs.String("p", "", "password")
		_ = fs.Parse(args)
		if *u == "" || *p == "" {
			fail(errors.New("need -u and -p"))
		}
		var out struct {
			UserID string `json:"userId"`
		}
		if err := postJSON(ctx, *addr+"/auth/register", map[string]string{"username": *u, "password": *p}, &out); err != nil {
			fail(err)
		}
		fmt.Println(out.UserID)

	case "login":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		addr := fs.String("addr", "http://localhost:8080", "sync server base URL")
		u := fs.String("u", "", "username")
		p := fs.String("p", "", "password")
		_ = fs.Parse(args)
		if *u == "" || *p == "" {
			fail(errors.New("need -u and -p"))
		}
		var out struct {
			UserID      string    `json:"userId"`
			AccessToken string    `json:"accessToken"`
			ExpiresAt   time.Time `json:"expiresAt"`
		}
		if err := postJSON(ctx, *addr+"/auth/login", map[string]string{"username": *u, "password": *p}, &out); err != nil {
			fail(err)
		}
		if err := saveToken(tokenFile{AccessToken: out.AccessToken, UserID: out.UserID, ExpiresAt: out.ExpiresAt}); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "sync-push":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		addr := fs.String("addr", "http://localhost:8080", "sync server base URL")
		_ = fs.Parse(args)
		tf, err := loadToken()
		if err != nil {
			fail(err)
		}
		logger, _ := zap.NewProduction()
		st, err := store.Open(dbPath(), logger)
		if err != nil {
			fail(err)
		}
		defer st.Close()
		ops, err := syncclient.BuildOps(ctx, st)
		if err != nil {
			fail(err)
		}
		if err := syncclient.New(*addr, tf.AccessToken).Push(ctx, tf.UserID, ops); err != nil {
			fail(err)
		}
		fmt.Printf("pushed %d records\n", len(ops))

	case "sync-pull":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		addr := fs.String("addr", "http://localhost:8080", "sync server base URL")
		_ = fs.Parse(args)
		tf, err := loadToken()
		if err != nil {
			fail(err)
		}
		logger, _ := zap.NewProduction()
		st, err := store.Open(dbPath(), logger)
		if err != nil {
			fail(err)
		}
		defer st.Close()
		records, err := syncclient.New(*addr, tf.AccessToken).Pull(ctx)
		if err != nil {
			fail(err)
		}
		if err := syncclient.Apply(ctx, st, records); err != nil {
			fail(err)
		}
		fmt.Printf("pulled %d records\n", len(records))

	default:
		usage()
	}
}

func postJSON(ctx context.Context, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("status %d: %s", resp.StatusCode, e.Error)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
