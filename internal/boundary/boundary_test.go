package boundary

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wyrgame/internal/testutil"
)

type BoundarySuite struct {
	suite.Suite
	renders  int
	boundary *Boundary[string]
}

func TestBoundarySuite(t *testing.T) {
	suite.Run(t, new(BoundarySuite))
}

func (s *BoundarySuite) SetupTest() {
	s.renders = 0
	s.boundary = New("test", func(err error) string {
		return "fallback: " + err.Error()
	}, testutil.NopLogger())
}

func (s *BoundarySuite) ok() (string, error) {
	s.renders++
	return "content", nil
}

func (s *BoundarySuite) TestRenderReturnsOutput() {
	s.Equal("content", s.boundary.Render(s.ok))
	s.NoError(s.boundary.Err())
}

func (s *BoundarySuite) TestPanicIsReplacedByFallback() {
	out := s.boundary.Render(func() (string, error) {
		panic("boom")
	})

	s.Equal("fallback: panic: boom", out)
	s.Error(s.boundary.Err())
}

func (s *BoundarySuite) TestErrorIsReplacedByFallback() {
	out := s.boundary.Render(func() (string, error) {
		return "partial", errors.New("bad data")
	})

	s.Equal("fallback: bad data", out)
}

func (s *BoundarySuite) TestTrippedBoundaryStaysFailedUntilReset() {
	s.boundary.Render(func() (string, error) { panic("boom") })

	out := s.boundary.Render(s.ok)
	s.Equal("fallback: panic: boom", out)
	s.Equal(0, s.renders)

	s.boundary.Reset()

	s.Equal("content", s.boundary.Render(s.ok))
	s.Equal(1, s.renders)
}

func (s *BoundarySuite) TestGuardDoesNotShareState() {
	fallback := func(err error) int { return -1 }

	s.Equal(-1, Guard("req", func() int { panic("boom") }, fallback, testutil.NopLogger()))
	s.Equal(7, Guard("req", func() int { return 7 }, fallback, testutil.NopLogger()))
}
