package object

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corosched/sched/poller"
)

func TestSockReportsKindAndFd(t *testing.T) {
	s := NewSock(7)
	assert.Equal(t, poller.Sock, s.Otype())
	assert.Equal(t, 7, s.Fd())
}

func TestPipeReportsKindAndFd(t *testing.T) {
	p := NewPipe(8)
	assert.Equal(t, poller.Pipe, p.Otype())
	assert.Equal(t, 8, p.Fd())
}

func TestProcReportsKindAndFd(t *testing.T) {
	pr := NewProc(9)
	assert.Equal(t, poller.Proc, pr.Otype())
	assert.Equal(t, 9, pr.Fd())
}
