package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"tidepool/internal/cmdlog"
	"tidepool/internal/config"
	"tidepool/internal/metrics"
	"tidepool/internal/model"
	"tidepool/internal/mstdn"
	"tidepool/internal/rpc"
	"tidepool/internal/session"
	"tidepool/internal/streaming"
	"tidepool/internal/theme"
	"tidepool/internal/timeline"
	"tidepool/internal/util"
)

func main() {
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "init":
		cmdInit()
	case "login":
		cmdLogin()
	case "whoami":
		cmdWhoami()
	case "timeline":
		cmdTimeline()
	case "stream":
		cmdStream()
	case "show":
		cmdShow()
	default:
		printHelp()
	}
}

func printHelp() {
	theme.PrintBanner()
	fmt.Println("Usage: tidepool <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init        Create a config file at ./tidepool.yaml")
	fmt.Println("  login       Print the authorize URL; -code exchanges it for a token")
	fmt.Println("  whoami      Show the logged-in account")
	fmt.Println("  timeline    Page the home (or an account's) timeline")
	fmt.Println("  stream      Follow the home timeline live")
	fmt.Println("  show        Show a single status by id")
}

// app wires the shared collaborators for one command invocation.
type app struct {
	cfg    config.Config
	store  *session.SQLiteStore
	router *rpc.Router
}

func setup(cfgPath string) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	store, err := session.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	if tok, err := store.Token(ctx); err == nil && tok == "" && cfg.Instance.Token != "" {
		_ = store.SetToken(ctx, cfg.Instance.Token)
	}
	inst := mstdn.NewInstance(cfg.Instance.BaseURL)
	router := rpc.NewRouter(mstdn.NewClient(), inst, store, rpc.AppData{
		ClientName:  cfg.App.ClientName,
		RedirectURI: cfg.App.RedirectURI,
		Scopes:      cfg.App.Scopes,
		Website:     cfg.App.Website,
	})
	metrics.StartServer(cfg.Metrics.Addr)
	return &app{cfg: cfg, store: store, router: router}, nil
}

func (a *app) close() { _ = a.store.Close() }

func cmdInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", "./tidepool.yaml", "path to write config")
	_ = fs.Parse(os.Args[2:])
	cfg := config.Default()
	if err := config.Save(*path, cfg); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	abs, _ := filepath.Abs(*path)
	theme.PrintBanner()
	fmt.Println("Config written to:", abs)
}

func cmdLogin() {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	cfgPath := fs.String("config", "./tidepool.yaml", "config path")
	code := fs.String("code", "", "authorization code to exchange")
	_ = fs.Parse(os.Args[2:])
	err := cmdlog.Run("login", func() error {
		a, err := setup(*cfgPath)
		if err != nil {
			return err
		}
		defer a.close()
		ctx := context.Background()
		if *code != "" {
			if err := a.router.ExchangeCode(ctx, *code); err != nil {
				return err
			}
			fmt.Println("Logged in.")
			return nil
		}
		u, err := a.router.LoginURL(ctx)
		if err != nil {
			return err
		}
		fmt.Println("Open this URL, authorize, then run: tidepool login -code <code>")
		fmt.Println(u)
		return nil
	})
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func cmdWhoami() {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	cfgPath := fs.String("config", "./tidepool.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	err := cmdlog.Run("whoami", func() error {
		a, err := setup(*cfgPath)
		if err != nil {
			return err
		}
		defer a.close()
		acct, err := a.router.AuthorizedAccount(context.Background())
		if err != nil {
			return err
		}
		if acct == nil {
			fmt.Println("Not logged in.")
			return nil
		}
		where := "local"
		if acct.IsRemote() {
			where = "remote"
		}
		fmt.Printf("%s (@%s, %s)\n", acct.DisplayName, acct.Acct, where)
		fmt.Printf("statuses=%d following=%d followers=%d\n",
			acct.StatusesCount, acct.FollowingCount, acct.FollowersCount)
		return nil
	})
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func cmdTimeline() {
	fs := flag.NewFlagSet("timeline", flag.ExitOnError)
	cfgPath := fs.String("config", "./tidepool.yaml", "config path")
	acct := fs.String("account", "", "acct handle; empty means the home timeline")
	pages := fs.Int("pages", 3, "maximum pages to fetch")
	_ = fs.Parse(os.Args[2:])
	err := cmdlog.Run("timeline", func() error {
		a, err := setup(*cfgPath)
		if err != nil {
			return err
		}
		defer a.close()
		ctx := context.Background()
		var source timeline.PageSource
		if *acct != "" {
			account, err := a.router.AccountLookup(ctx, util.StripPrefix(*acct, "@"))
			if err != nil {
				if mstdn.IsNotFound(err) {
					fmt.Println("Account not found.")
					return nil
				}
				return err
			}
			source = timeline.AccountSource(a.router, account.ID)
		} else {
			source = timeline.HomeSource(a.router)
		}
		feed := timeline.NewFeed(source, a.cfg.Timeline.PageLimit)
		for i := 0; i < *pages && !feed.Exhausted(); i++ {
			if err := feed.LoadMore(ctx); err != nil {
				return err
			}
		}
		for _, s := range feed.Render() {
			printStatusRow(s)
		}
		return nil
	})
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func cmdStream() {
	fs := flag.NewFlagSet("stream", flag.ExitOnError)
	cfgPath := fs.String("config", "./tidepool.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	err := cmdlog.Run("stream", func() error {
		a, err := setup(*cfgPath)
		if err != nil {
			return err
		}
		defer a.close()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		feed := timeline.NewFeed(timeline.HomeSource(a.router), a.cfg.Timeline.PageLimit)
		if err := feed.LoadMore(ctx); err != nil {
			return err
		}
		for _, s := range feed.Render() {
			printStatusRow(s)
		}

		tok, err := a.router.Token(ctx)
		if err != nil {
			return err
		}
		sc := streaming.NewClient(mstdn.NewInstance(a.cfg.Instance.BaseURL).WithAuthorizationToken(tok))
		sub := sc.Subscribe(func(e model.Event) {
			feed.OnEvent(e)
			switch ev := e.(type) {
			case model.UpdateEvent:
				printStatusRow(ev.Status)
			case model.DeleteEvent:
				fmt.Printf("(deleted: %s)\n", ev.TargetID)
			}
		})
		defer sub.Unsubscribe()
		err = sc.Run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		return err
	})
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func cmdShow() {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	cfgPath := fs.String("config", "./tidepool.yaml", "config path")
	id := fs.String("id", "", "status id")
	_ = fs.Parse(os.Args[2:])
	err := cmdlog.Run("show", func() error {
		a, err := setup(*cfgPath)
		if err != nil {
			return err
		}
		defer a.close()
		s, err := a.router.Status(context.Background(), *id)
		if err != nil {
			if mstdn.IsNotFound(err) {
				fmt.Println("Status not found.")
				return nil
			}
			return err
		}
		fmt.Printf("%s (@%s)\n", s.Account.DisplayName, s.Account.Acct)
		fmt.Println(util.StripTags(s.Content))
		if s.Application != nil {
			fmt.Printf("via %s\n", s.Application.Name)
		}
		fmt.Println(s.CreatedAt.Local().Format(time.RFC1123))
		return nil
	})
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func printStatusRow(s model.Status) {
	text := util.EllipsisText(util.StripTags(s.Content), 140)
	fmt.Printf("%s  %s @%s\n  %s\n", s.CreatedAt.Local().Format("15:04"), s.Account.DisplayName, s.Account.Acct, text)
}
