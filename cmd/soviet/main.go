// Command soviet runs the game in a terminal: a thin REPL over the engine,
// standing in for the touch UI the engine was built to drive.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"soviet/internal/config"
	"soviet/internal/export"
	"soviet/internal/game"
	"soviet/internal/notify"
	"soviet/internal/save"
	"soviet/internal/sched"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := newLogger(cfg.Log)

	content, err := game.LoadContent(cfg.Content)
	if err != nil {
		log.Fatal().Err(err).Msg("content failed to load")
	}

	var store game.Store
	if cfg.Save != "" {
		db, err := save.OpenSQLite(cfg.Save, log)
		if err != nil {
			log.Fatal().Err(err).Msg("save database failed to open")
		}
		defer db.Close()
		store = db
	} else {
		store = save.NewMemory()
	}

	ctx := context.Background()
	player := game.LoadOrNewPlayer(ctx, store, content, cfg.Player, log)
	session := game.NewSession(player, content, sched.Timers{}, notify.NewLog(log), store, log)
	session.SetObserver(&console{})
	session.Start()
	defer session.Stop()

	fmt.Println("SAVE THE SOVIET — type 'help' for commands")
	repl(ctx, session, player, log)

	if err := session.Checkpoint(ctx); err != nil {
		log.Warn().Err(err).Msg("final checkpoint failed")
	}
}

func newLogger(cfg config.Log) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	var log zerolog.Logger
	if cfg.Format == "console" {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger()
}

// console prints engine events as they happen. It must not call back into
// the session.
type console struct{}

func (c *console) HandleEvent(e game.Event) {
	switch e.Kind {
	case game.EventMessages:
		for _, m := range e.Friend.History[e.From:e.To] {
			speaker := e.Friend.FullName()
			if m.Direction == game.Outgoing {
				speaker = "You"
			}
			fmt.Printf("  [%s] %s\n", speaker, m.Text)
		}
	case game.EventChoices:
		fmt.Printf("  %s is waiting — 'say <n>':\n", e.Friend.FullName())
		for i, ch := range e.Choices {
			fmt.Printf("    %d. %s\n", i+1, ch.Lines[0])
		}
	case game.EventChatEnded:
		fmt.Printf("  — chat with %s ended —\n", e.Friend.FullName())
	case game.EventQuizStarted:
		fmt.Println("  a quiz has started — type 'quiz'")
	case game.EventGameEnded:
		fmt.Printf("  *** GAME OVER: you %s ***\n", e.Result)
	}
}

func repl(ctx context.Context, session *game.Session, player *game.Player, log zerolog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	current := ""
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]
		switch cmd {
		case "help":
			fmt.Println(`friends | chat <lastname> | say <n> | leave | powers |
upgrade <power> | execute <lastname> | quiz | answer <n> |
export <lastname> <file> | save | quit`)
		case "friends":
			for _, f := range player.Friends {
				marker := " "
				if f.Unread {
					marker = "*"
				}
				fmt.Printf("%s %-12s loyalty %3d%%  %s\n", marker, f.ID(), f.Loyalty.Value(), f.Description)
			}
			fmt.Printf("  level %d  support %d%%  ₽%d\n",
				player.Level.Tier(), player.Support.Value(), player.Currency)
		case "chat":
			if len(args) != 1 {
				continue
			}
			current = args[0]
			session.StartChat(current)
			suffix, pending, ended := session.AttachChat(current, -1)
			for _, m := range suffix {
				fmt.Printf("  [%s] %s\n", m.Direction, m.Text)
			}
			for i, ch := range pending {
				fmt.Printf("    %d. %s\n", i+1, ch.Lines[0])
			}
			if ended.Ended {
				fmt.Println("  — chat ended —")
			}
		case "say":
			if current == "" || len(args) != 1 {
				continue
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				continue
			}
			session.Respond(current, n-1)
		case "leave":
			if current != "" {
				session.DetachChat(current)
				current = ""
			}
		case "powers":
			for _, p := range player.Powers {
				fmt.Printf("  %-20s %s (upgrade: ₽%d)\n", p.Name, p.Description, p.UpgradeCost())
			}
		case "upgrade":
			if len(args) == 0 {
				continue
			}
			c := game.Consequence{Kind: game.UpgradePower, Power: strings.Join(args, " ")}
			if !session.CanApply(c, nil) {
				fmt.Println("  not enough coins (or power is maxed)")
				continue
			}
			session.Apply(c, nil)
		case "execute":
			if len(args) != 1 {
				continue
			}
			f := player.Friend(args[0])
			if f == nil {
				fmt.Println("  unknown friend")
				continue
			}
			if session.Execute(args[0]) {
				fmt.Printf("  %s has been dealt with\n", f.FullName())
				continue
			}
			switch f.Restriction.Kind {
			case game.Forbidden:
				fmt.Println("  this comrade is untouchable")
			case game.MinLevel:
				fmt.Printf("  locked: requires level %d (you are level %d)\n",
					f.Restriction.Level, player.Level.Tier())
			}
		case "quiz":
			q := session.Quiz()
			if q == nil {
				fmt.Println("  no quiz running")
				continue
			}
			if cur, ok := q.Current(); ok {
				fmt.Println(" ", cur.Text)
				for i, a := range cur.Answers {
					fmt.Printf("    %d. %s\n", i+1, a)
				}
			}
		case "answer":
			if len(args) != 1 {
				continue
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				continue
			}
			correct, done := session.AnswerQuiz(n - 1)
			fmt.Printf("  correct: %v\n", correct)
			if done {
				fmt.Println("  quiz finished")
			}
		case "export":
			if len(args) != 2 {
				continue
			}
			f := player.Friend(args[0])
			if f == nil {
				fmt.Println("  unknown friend")
				continue
			}
			pdf, err := export.Transcript(f, player.Name)
			if err != nil {
				log.Warn().Err(err).Msg("export failed")
				continue
			}
			if err := os.WriteFile(args[1], pdf, 0o600); err != nil {
				log.Warn().Err(err).Msg("export write failed")
				continue
			}
			fmt.Printf("  wrote %s\n", args[1])
		case "save":
			if err := session.Checkpoint(ctx); err != nil {
				log.Warn().Err(err).Msg("checkpoint failed")
			} else {
				fmt.Println("  saved")
			}
		case "quit", "exit":
			return
		default:
			fmt.Println("  unknown command, try 'help'")
		}
	}
}
