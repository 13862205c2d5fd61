// Command engine runs an interactive session simulator: behavioral events
// are typed as commands, driven through the engagement engine on a fake
// clock, and the resulting unlocks and level changes are printed as they
// happen.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/engagement-engine/internal/config"
	"github.com/danielpatrickdp/engagement-engine/internal/engine"
	"github.com/danielpatrickdp/engagement-engine/internal/feedback"
	"github.com/danielpatrickdp/engagement-engine/internal/journal"
	"github.com/danielpatrickdp/engagement-engine/internal/signal"
)

// #region env

type envConfig struct {
	ConfigPath string `env:"ENGAGE_CONFIG"`
	DBPath     string `env:"ENGAGE_DB" envDefault:"sessions.db"`
	Debug      bool   `env:"ENGAGE_DEBUG"`
}

// #endregion env

// #region main

func main() {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		fmt.Fprintf(os.Stderr, "parse env: %v\n", err)
		os.Exit(2)
	}

	log, err := buildLogger(ec.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(2)
	}
	defer log.Sync()

	cfg := config.Default()
	if ec.ConfigPath != "" {
		if cfg, err = config.Load(ec.ConfigPath); err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(2)
		}
	}

	clock := clockwork.NewFakeClock()
	eng, err := engine.New(cfg, engine.WithClock(clock), engine.WithLogger(log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(2)
	}

	j, err := journal.Open(ec.DBPath, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open journal: %v\n", err)
		os.Exit(2)
	}

	sessionID := eng.Snapshot().SessionID
	if err := j.BeginSession(sessionID, clock.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "begin session: %v\n", err)
		os.Exit(1)
	}
	j.Attach(sessionID, eng.SubscribeState(), eng.SubscribeUnlocks())
	unlocks := eng.SubscribeUnlocks()

	fmt.Printf("Engagement engine simulator. Session %s\n", sessionID)
	fmt.Println("Commands: loop | burst N | scroll PCT | key TEXT | sensor CH VAL |")
	fmt.Println("          hover ID | keyword W | wait SECONDS | state | quit")

	sim := &simulator{eng: eng, clock: clock, cfg: cfg, unlocks: unlocks,
		tick: time.Duration(cfg.Session.TickSeconds * float64(time.Second))}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		if err := sim.handle(line); err != nil {
			fmt.Printf("error: %v\n", err)
		}
		sim.drainUnlocks()
	}

	eng.Close()
	if err := j.EndSession(sessionID, clock.Now()); err != nil {
		log.Warn("end session", zap.Error(err))
	}
	j.Close()
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// #endregion main

// #region simulator

// simulator drives the engine synchronously: event times come from the fake
// clock and classification ticks fire whenever simulated time crosses a tick
// boundary, so "wait 30" behaves like thirty real seconds.
type simulator struct {
	eng     *engine.Engine
	clock   clockwork.FakeClock
	cfg     *config.Config
	unlocks <-chan feedback.Notification
	tick    time.Duration
	pending time.Duration // time since the last fired tick
}

func (s *simulator) handle(line string) error {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "loop":
		s.feedLoop()
	case "burst":
		n := 7
		if len(args) > 0 {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("burst count: %w", err)
			}
			n = v
		}
		s.feedBurst(n)
	case "scroll":
		if len(args) < 1 {
			return fmt.Errorf("scroll needs a percentage")
		}
		pct, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("scroll percentage: %w", err)
		}
		s.step(50 * time.Millisecond)
		s.eng.Process(signal.Scroll{
			Offset: pct * 10, DocHeight: 1100, ViewportHeight: 100,
			Time: s.clock.Now(),
		})
	case "key":
		if len(args) < 1 {
			return fmt.Errorf("key needs text")
		}
		for _, r := range strings.Join(args, " ") {
			s.step(80 * time.Millisecond)
			s.eng.Process(signal.Key{Rune: r, Time: s.clock.Now()})
		}
	case "sensor":
		if len(args) < 2 {
			return fmt.Errorf("sensor needs a channel and a value")
		}
		val, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("sensor value: %w", err)
		}
		s.step(50 * time.Millisecond)
		s.eng.Process(signal.Sensor{
			Channel: signal.Channel(args[0]), Value: val, Time: s.clock.Now(),
		})
	case "hover":
		if len(args) < 1 {
			return fmt.Errorf("hover needs an element id")
		}
		s.step(50 * time.Millisecond)
		s.eng.Process(signal.Trigger{
			Source: "simulator", Name: "hover", Detail: args[0], Time: s.clock.Now(),
		})
	case "keyword":
		if len(args) < 1 {
			return fmt.Errorf("keyword needs a word")
		}
		s.step(50 * time.Millisecond)
		s.eng.Process(signal.Trigger{
			Source: "simulator", Name: "keyword", Detail: args[0], Time: s.clock.Now(),
		})
	case "wait":
		if len(args) < 1 {
			return fmt.Errorf("wait needs seconds")
		}
		secs, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("wait seconds: %w", err)
		}
		s.step(time.Duration(secs * float64(time.Second)))
	case "state":
		s.printState()
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// step advances simulated time, firing classification ticks at every
// boundary crossed.
func (s *simulator) step(d time.Duration) {
	remaining := d
	for remaining > 0 {
		untilTick := s.tick - s.pending
		if remaining < untilTick {
			s.clock.Advance(remaining)
			s.pending += remaining
			return
		}
		s.clock.Advance(untilTick)
		remaining -= untilTick
		s.pending = 0
		s.eng.Tick()
	}
}

// feedLoop emits a two-lobe pointer path that the loop detector recognizes.
func (s *simulator) feedLoop() {
	for i := 0; i < 20; i++ {
		s.step(20 * time.Millisecond)
		s.eng.Process(signal.Pointer{X: 100, Y: 200, Time: s.clock.Now()})
	}
	for i := 0; i < 20; i++ {
		s.step(20 * time.Millisecond)
		s.eng.Process(signal.Pointer{X: 300, Y: 200, Time: s.clock.Now()})
	}
}

func (s *simulator) feedBurst(n int) {
	for i := 0; i < n; i++ {
		s.step(100 * time.Millisecond)
		s.eng.Process(signal.Click{X: 50, Y: 50, Time: s.clock.Now()})
	}
}

func (s *simulator) printState() {
	snap := s.eng.Snapshot()
	est := s.eng.Estimate()
	fmt.Printf("level=%d label=%s confidence=%.3f unlocks=%d sync=%d flags=%v\n",
		snap.Level, est.Label, est.Confidence,
		len(snap.Discoveries), snap.SynchronicityCount, snap.Flags)
}

func (s *simulator) drainUnlocks() {
	for len(s.unlocks) > 0 {
		n := <-s.unlocks
		fmt.Printf("* unlocked %s: %s\n", n.Discovery, n.Payload.Message)
	}
}

// #endregion simulator
