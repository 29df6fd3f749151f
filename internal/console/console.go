package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tower/internal/game/battle"
	"github.com/cory-johannsen/tower/internal/game/command"
	"github.com/cory-johannsen/tower/internal/game/condition"
	"github.com/cory-johannsen/tower/internal/game/ruleset"
	"github.com/cory-johannsen/tower/internal/game/session"
	"github.com/cory-johannsen/tower/internal/game/tower"
)

// maxSteps bounds how many ticks one command may advance the clock.
const maxSteps = 10000

// Config configures a Console.
type Config struct {
	Session *session.Session
	Rules   *ruleset.Ruleset
	// Registry resolves typed commands; nil uses command.DefaultRegistry.
	Registry *command.Registry
	In       io.Reader
	Out      io.Writer
	// Tick is the clock step used while animations play.
	Tick time.Duration
	// Realtime sleeps for each tick so animations take wall-clock time.
	Realtime bool
	// Color enables ANSI styling.
	Color  bool
	Logger *zap.Logger
}

// Console is a read-eval-print loop over one session.
type Console struct {
	cfg    Config
	reg    *command.Registry
	in     *bufio.Scanner
	logger *zap.Logger
}

// New validates cfg and returns a Console.
func New(cfg Config) (*Console, error) {
	var errs []error
	if cfg.Session == nil || cfg.Rules == nil {
		errs = append(errs, errors.New("session and rules are required"))
	}
	if cfg.In == nil || cfg.Out == nil {
		errs = append(errs, errors.New("input and output are required"))
	}
	if cfg.Tick <= 0 {
		errs = append(errs, fmt.Errorf("tick must be positive, got %s", cfg.Tick))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("new console: %w", err)
	}
	reg := cfg.Registry
	if reg == nil {
		reg = command.DefaultRegistry()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{
		cfg:    cfg,
		reg:    reg,
		in:     bufio.NewScanner(cfg.In),
		logger: logger.With(zap.String("session_id", cfg.Session.ID)),
	}, nil
}

// Run plays until the input ends, the player quits, or ctx is cancelled.
//
// Postcondition: returns nil on quit or end of input.
func (c *Console) Run(ctx context.Context) error {
	c.println(Colorf(Bold, "%s the %s enters the tower. Type help for commands.", c.cfg.Session.Name, c.cfg.Session.Class))
	if err := c.advance(ctx); err != nil {
		return err
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		for c.in.Scan() {
			select {
			case lines <- c.in.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.print(c.prompt())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				c.println("")
				return c.in.Err()
			}
			quit, err := c.Exec(ctx, line)
			if err != nil || quit {
				return err
			}
		}
	}
}

// Exec runs one typed line. It reports whether the player asked to quit.
func (c *Console) Exec(ctx context.Context, line string) (bool, error) {
	p := command.Parse(line)
	if p.Command == "" {
		return false, nil
	}
	sess := c.cfg.Session
	if sess.State().Stage == tower.StageReward {
		if _, err := strconv.Atoi(p.Command); err == nil {
			return false, c.reward(ctx, []string{p.Command})
		}
	}

	cmd, ok := c.reg.Resolve(p.Command)
	if !ok {
		c.println(Colorf(Yellow, "Unknown command %q. Type help for a list.", p.Command))
		return false, nil
	}
	c.logger.Debug("command", zap.String("command", cmd.Name), zap.Strings("args", p.Args))

	switch cmd.Handler {
	case command.HandlerAction:
		if err := sess.Submit(cmd.Action); err != nil {
			c.println(Colorf(Yellow, "Can't %s: %v", cmd.Name, err))
			return false, nil
		}
		return false, c.advance(ctx)
	case command.HandlerStatus:
		c.print(RenderState(sess.State()))
	case command.HandlerActions:
		slots, err := c.cfg.Rules.Actions(sess.Class)
		if err != nil {
			return false, err
		}
		c.print(RenderActions(slots, c.reg))
	case command.HandlerReward:
		return false, c.reward(ctx, p.Args)
	case command.HandlerRestart:
		return false, c.progress(ctx, "restart", sess.Restart)
	case command.HandlerRetry:
		return false, c.progress(ctx, "retry", sess.Retry)
	case command.HandlerHelp:
		c.print(RenderHelp(c.reg))
	case command.HandlerQuit:
		c.println("You leave the tower.")
		return true, nil
	}
	return false, nil
}

func (c *Console) reward(ctx context.Context, args []string) error {
	if len(args) != 1 {
		c.print(RenderRewards())
		return nil
	}
	rw, err := parseReward(args[0])
	if err == nil {
		err = c.cfg.Session.Choose(rw)
	}
	if err != nil {
		c.println(Colorf(Yellow, "Can't choose that: %v", err))
		return nil
	}
	c.println(Colorf(BrightGreen, "You gain %s.", rw))
	return c.advance(ctx)
}

func parseReward(s string) (tower.Reward, error) {
	if n, err := strconv.Atoi(s); err == nil {
		all := tower.Rewards()
		if n < 1 || n > len(all) {
			return 0, fmt.Errorf("%w: choose 1-%d", tower.ErrUnknownReward, len(all))
		}
		return all[n-1], nil
	}
	return tower.ParseReward(s)
}

func (c *Console) progress(ctx context.Context, name string, fn func() error) error {
	if err := fn(); err != nil {
		c.println(Colorf(Yellow, "Can't %s: %v", name, err))
		return nil
	}
	return c.advance(ctx)
}

// advance runs the clock until the player must act, printing every event on the way.
func (c *Console) advance(ctx context.Context) error {
	sess := c.cfg.Session
	for step := 0; ; step++ {
		c.drain()
		st := sess.State()
		if st.Stage != tower.StageBattle {
			break
		}
		if st.Battle.Phase == battle.PlayerTurn && !stunned(st.Battle.Player) {
			break
		}
		if step >= maxSteps {
			return fmt.Errorf("battle stalled in %s", st.Battle.Phase)
		}
		if c.cfg.Realtime {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.cfg.Tick):
			}
		}
		sess.Update(c.cfg.Tick)
	}

	st := sess.State()
	switch st.Stage {
	case tower.StageBattle:
		c.print(RenderState(st))
	case tower.StageReward:
		c.println(Colorf(BrightGreen, "Floor %d cleared!", st.Floor))
		c.print(RenderRewards())
	case tower.StageComplete:
		c.println(Colorf(BrightGreen, "You conquered all %d floors! Type restart to climb again.", st.Floors))
	case tower.StageDefeat:
		c.println(Colorf(BrightRed, "You fell on floor %d. Type retry to start over.", st.Floor))
	}
	return nil
}

func (c *Console) drain() {
	for _, ev := range c.cfg.Session.Drain() {
		if line := RenderEvent(ev); line != "" {
			c.println(line)
		}
	}
}

func (c *Console) prompt() string {
	switch c.cfg.Session.State().Stage {
	case tower.StageReward:
		return "reward> "
	case tower.StageComplete, tower.StageDefeat:
		return "game over> "
	}
	return "> "
}

func stunned(v battle.View) bool {
	for _, s := range v.Statuses {
		if s.Kind == condition.Stun {
			return true
		}
	}
	return false
}

func (c *Console) print(s string) {
	if !c.cfg.Color {
		s = StripANSI(s)
	}
	if _, err := io.WriteString(c.cfg.Out, s); err != nil {
		c.logger.Warn("writing to console", zap.Error(err))
	}
}

func (c *Console) println(s string) {
	c.print(strings.TrimRight(s, "\n") + "\n")
}
