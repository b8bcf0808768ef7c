// Package supervise starts and stops the auxiliary service processes the
// gateway fronts (stream consumers, webhook relays). The gateway owns their
// lifecycle: they start before the HTTP server accepts traffic and are
// terminated on shutdown.
package supervise

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/madhava-cloud/gateway/internal/config"
)

// termGrace is how long a process gets to exit after SIGTERM before SIGKILL.
const termGrace = 5 * time.Second

type process struct {
	name string
	cmd  *exec.Cmd
	done chan struct{}
}

// Supervisor manages the configured auxiliary processes.
type Supervisor struct {
	log *zap.Logger

	mu    sync.Mutex
	procs []*process
}

// New creates a supervisor with no processes running.
func New(log *zap.Logger) *Supervisor {
	return &Supervisor{log: log}
}

// Start launches every configured command. A command that fails to start
// aborts the whole startup; already-started siblings are stopped.
func (s *Supervisor) Start(commands []config.ServiceCommand) error {
	for _, c := range commands {
		if err := s.startOne(c); err != nil {
			s.Stop()
			return fmt.Errorf("start %s: %w", c.Name, err)
		}
	}
	return nil
}

func (s *Supervisor) startOne(c config.ServiceCommand) error {
	cmd := exec.Command(c.Cmd, c.Args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return err
	}

	p := &process{name: c.Name, cmd: cmd, done: make(chan struct{})}
	go func() {
		err := cmd.Wait()
		close(p.done)
		if err != nil {
			s.log.Warn("supervised process exited",
				zap.String("service", p.name),
				zap.Error(err),
			)
		} else {
			s.log.Info("supervised process exited", zap.String("service", p.name))
		}
	}()

	s.mu.Lock()
	s.procs = append(s.procs, p)
	s.mu.Unlock()

	s.log.Info("supervised process started",
		zap.String("service", c.Name),
		zap.Int("pid", cmd.Process.Pid),
	)
	return nil
}

// Running reports liveness per service name.
func (s *Supervisor) Running() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]bool, len(s.procs))
	for _, p := range s.procs {
		select {
		case <-p.done:
			out[p.name] = false
		default:
			out[p.name] = true
		}
	}
	return out
}

// Stop terminates all processes: SIGTERM first, SIGKILL after the grace
// period. Returns once every process has exited.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	procs := s.procs
	s.procs = nil
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, p := range procs {
		wg.Add(1)
		go func(p *process) {
			defer wg.Done()
			s.stopOne(p)
		}(p)
	}
	wg.Wait()
}

func (s *Supervisor) stopOne(p *process) {
	select {
	case <-p.done:
		return
	default:
	}

	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		s.log.Warn("failed to signal process",
			zap.String("service", p.name),
			zap.Error(err),
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), termGrace)
	defer cancel()

	select {
	case <-p.done:
	case <-ctx.Done():
		s.log.Warn("process ignored SIGTERM, killing", zap.String("service", p.name))
		_ = p.cmd.Process.Kill()
		<-p.done
	}
}
