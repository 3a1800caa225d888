package core

import (
	"context"
	"crypto/subtle"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gliderlabs/ssh"
	"github.com/juju/ratelimit"
	gossh "golang.org/x/crypto/ssh"

	"github.com/seashell-sh/seashell/core/config"
	"github.com/seashell-sh/seashell/core/logger"
	"github.com/seashell-sh/seashell/core/ttylog"
)

// Server exposes the interpreter over SSH. Every accepted session gets its
// own Shell bound to the session streams, with an isolated working
// directory and a recorded transcript.
type Server struct {
	configuration *config.Configuration
	logger        *logger.Logger
	sshServer     *ssh.Server
	bucket        *ratelimit.Bucket
}

// NewServer builds a Server from the configuration. Interaction events are
// written to logDest as JSON lines.
func NewServer(configuration *config.Configuration, logDest io.Writer) (*Server, error) {
	server := &Server{
		configuration: configuration,
		logger:        logger.NewJsonLinesLogRecorder(logDest),
	}

	if rate := configuration.SSH.SessionsPerMinute; rate > 0 {
		capacity := int64(rate)
		if capacity < 1 {
			capacity = 1
		}
		server.bucket = ratelimit.NewBucketWithRate(rate/60.0, capacity)
	}

	keyPem, err := configuration.HostKeyPem()
	if err != nil {
		return nil, fmt.Errorf("reading host key: %w", err)
	}
	signer, err := gossh.ParsePrivateKey(keyPem)
	if err != nil {
		return nil, fmt.Errorf("parsing host key: %w", err)
	}
	log.Printf("Host key fingerprint: %s", gossh.FingerprintSHA256(signer.PublicKey()))

	server.sshServer = &ssh.Server{
		Addr: fmt.Sprintf(":%d", configuration.SSH.Port),
		Handler: func(s ssh.Session) {
			server.handleSession(s)
		},
		PasswordHandler: func(ctx ssh.Context, password string) bool {
			ok := configuration.SSH.AllowAnyPassword
			for _, allowed := range configuration.SSH.Passwords {
				if subtle.ConstantTimeCompare([]byte(password), []byte(allowed)) == 1 {
					ok = true
				}
			}
			server.logger.Sessionless().Record(&logger.LogEntry{
				LoginAttempt: &logger.LoginAttempt{
					Success:    ok,
					Username:   ctx.User(),
					RemoteAddr: fmt.Sprintf("%s", ctx.RemoteAddr()),
				},
			})
			return ok
		},
	}
	server.sshServer.AddHostKey(signer)

	return server, nil
}

// ListenAndServe accepts connections until Shutdown.
func (srv *Server) ListenAndServe() error {
	return srv.sshServer.ListenAndServe()
}

// Shutdown stops the server, ending open sessions.
func (srv *Server) Shutdown(ctx context.Context) error {
	return srv.sshServer.Shutdown(ctx)
}

func (srv *Server) handleSession(s ssh.Session) {
	if srv.bucket != nil && srv.bucket.TakeAvailable(1) == 0 {
		fmt.Fprintln(s, "connection limit reached, try again later")
		s.Exit(1)
		return
	}

	sessionLog := srv.logger.NewSession()
	sessionLog.Record(&logger.LogEntry{SessionStart: &logger.SessionStart{Interactive: false}})
	defer sessionLog.Record(&logger.LogEntry{SessionEnd: &logger.SessionEnd{}})

	var (
		stdin  io.Reader = s
		stdout io.Writer = s
		stderr io.Writer = s.Stderr()
	)

	castName := fmt.Sprintf("%s.%s", time.Now().Format(time.RFC3339), ttylog.AsciicastFileExt)
	if fd, err := srv.configuration.CreateSessionLog(castName); err == nil {
		defer fd.Close()
		recorder := NewRecorder(ttylog.NewAsciicastLogSink(fd))
		defer recorder.Close()
		stdin = recorder.WrapInput(stdin)
		stdout = recorder.WrapOutput(ttylog.FDStdout, stdout)
		stderr = recorder.WrapOutput(ttylog.FDStderr, stderr)
	} else {
		log.Printf("Session recording unavailable: %v", err)
	}

	// Served children get no stdin: without a PTY a stdin pipe would race
	// the interpreter for the next input line.
	shell, err := NewShell(ShellConfig{
		Stdin:        stdin,
		Stdout:       stdout,
		Stderr:       stderr,
		Prompt:       srv.configuration.Prompt,
		MaxLineBytes: srv.configuration.MaxLineBytes,
		MaxArgs:      srv.configuration.MaxArgs,
		Env:          append(os.Environ(), s.Environ()...),
		Log:          sessionLog,
	})
	if err != nil {
		fmt.Fprintf(s.Stderr(), "seashell: %v\n", err)
		s.Exit(1)
		return
	}

	if err := shell.Run(); err != nil {
		s.Exit(1)
		return
	}
	s.Exit(0)
}
