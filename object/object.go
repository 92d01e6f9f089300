// Package object supplies minimal pollable-object wrappers standing in for
// a build tool's higher-level socket/pipe/process types. They exist only so
// the scheduler core and its poller/timer collaborators can be driven
// end-to-end by tests and the demo command.
package object

import "github.com/corosched/sched/poller"

// Sock wraps a socket file descriptor.
type Sock struct{ fd int }

// NewSock wraps an existing socket file descriptor.
func NewSock(fd int) *Sock { return &Sock{fd: fd} }

func (s *Sock) Otype() poller.ObjectKind { return poller.Sock }
func (s *Sock) Fd() int                  { return s.fd }

// Pipe wraps a pipe file descriptor.
type Pipe struct{ fd int }

// NewPipe wraps an existing pipe file descriptor.
func NewPipe(fd int) *Pipe { return &Pipe{fd: fd} }

func (p *Pipe) Otype() poller.ObjectKind { return poller.Pipe }
func (p *Pipe) Fd() int                  { return p.fd }

// Proc wraps a subprocess's wait-status file descriptor (e.g. a pidfd, or
// a side-channel pipe a host uses to signal process exit).
type Proc struct{ fd int }

// NewProc wraps an existing process status file descriptor.
func NewProc(fd int) *Proc { return &Proc{fd: fd} }

func (p *Proc) Otype() poller.ObjectKind { return poller.Proc }
func (p *Proc) Fd() int                  { return p.fd }
