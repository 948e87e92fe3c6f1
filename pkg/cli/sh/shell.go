// Package sh provides the interactive bench shell to drive the line
// follower step by step on real or simulated hardware.
package sh

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/linebot/pkg/linefollow"
	"github.com/robotalks/linebot/pkg/store"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	// AutoAttach is the target attached before running commands.
	AutoAttach string

	Shell   *ishell.Shell
	Config  *linefollow.Config
	Session *Session
	// Store records calibrations, opened on first use.
	Store *store.Store
}

const (
	shellKey         = "$shell"
	unattachedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	attachTo   string

	targets = make(map[string]Target)

	// commands
	commands = []*ishell.Cmd{
		&TargetsCmd,
		&AttachCmd,
		&DetachCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.StringVar(&attachTo, "attach", attachTo, "Target to attach at start.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// AddTarget registers hardware which can be attached.
func AddTarget(name string, target Target) {
	targets[name] = target
}

// TargetNames lists registered targets.
func TargetNames() []string {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates a new shell.
func New(conf *linefollow.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		AutoAttach:  attachTo,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unattachedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeAttached wraps command func requires an attached session.
func MustBeAttached(fn func(c *ishell.Context, s *Session)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		sess := ShellFrom(c).Session
		if sess == nil {
			c.Err(fmt.Errorf("not attached"))
			return
		}
		fn(c, sess)
	}
}

// Print prints v in JSON or as text.
func Print(c *ishell.Context, v interface{}) {
	if ShellFrom(c).OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(v)
}

// Attach attaches to the named target, replacing current session.
func (s *Shell) Attach(name string) error {
	target, ok := targets[name]
	if !ok {
		return fmt.Errorf("unknown target %q, available: %s", name, strings.Join(TargetNames(), ", "))
	}
	hw, err := target()
	if err != nil {
		return err
	}
	var rec linefollow.CalibrationRecorder
	if store.Default().Enabled() {
		st, err := s.OpenStore()
		if err != nil {
			return err
		}
		rec = st
	}
	sess, err := Attach(name, s.Config, hw, rec)
	if err != nil {
		return err
	}
	s.Detach()
	s.Session = sess
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", name))
	return nil
}

// Detach stops the motors and releases current hardware.
func (s *Shell) Detach() {
	if s.Session != nil {
		if err := s.Session.Close(); err != nil {
			glog.Warningf("detach %s: %v", s.Session.Name, err)
		}
		s.Session = nil
		s.Shell.SetPrompt(unattachedPrompt)
	}
}

// OpenStore opens the calibration store configured by -calibration-db.
func (s *Shell) OpenStore() (*store.Store, error) {
	if s.Store != nil {
		return s.Store, nil
	}
	conf := store.Default()
	if !conf.Enabled() {
		return nil, fmt.Errorf("no calibration store, use -calibration-db")
	}
	st, err := conf.Open()
	if err != nil {
		return nil, err
	}
	s.Store = st
	return st, nil
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	defer func() {
		s.Detach()
		if s.Store != nil {
			s.Store.Close()
		}
	}()
	if s.AutoAttach != "" {
		if s.Interactive {
			s.Shell.Printf("Attaching %s ...\n", s.AutoAttach)
		}
		if err := s.Attach(s.AutoAttach); err != nil {
			log.Fatalf("attach %q failed: %v", s.AutoAttach, err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// TargetsCmd lists targets.
	TargetsCmd = ishell.Cmd{
		Name:    "targets",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			names := TargetNames()
			if ShellFrom(c).OutputJSON {
				Print(c, names)
				return
			}
			for _, name := range names {
				c.Println(name)
			}
		},
	}

	// AttachCmd attaches a target.
	AttachCmd = ishell.Cmd{
		Name:    "attach",
		Aliases: []string{"a"},
		Help:    "TARGET",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var name string
			if len(c.Args) > 0 {
				name = c.Args[0]
			} else {
				names := TargetNames()
				if len(names) == 0 {
					c.Err(fmt.Errorf("no targets"))
					return
				}
				if len(names) > 1 {
					if !s.Interactive {
						c.Err(fmt.Errorf("TARGET required in non-interactive mode"))
						return
					}
					name = names[s.Shell.MultiChoice(names, "Which one to attach?")]
				} else {
					name = names[0]
				}
			}
			if err := s.Attach(name); err != nil {
				c.Err(err)
			}
		},
	}

	// DetachCmd detaches current target.
	DetachCmd = ishell.Cmd{
		Name:    "detach",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Detach()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(linefollow.NewConfig()).Run(flag.Args()...)
}
