package level

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/wyrgame/internal/model"
)

type TableSuite struct {
	suite.Suite
	table *Table
}

func TestTableSuite(t *testing.T) {
	suite.Run(t, new(TableSuite))
}

func (s *TableSuite) SetupTest() {
	s.table = DefaultTable()
}

func (s *TableSuite) TestResolveZero() {
	res := s.table.Resolve(0)

	s.Equal(1, res.Current.Level)
	s.Require().NotNil(res.Next)
	s.Equal(2, res.Next.Level)
	s.Equal(0.0, res.Progress)
}

func (s *TableSuite) TestResolveMidBracket() {
	res := s.table.Resolve(250)

	s.Equal(2, res.Current.Level)
	s.Equal(100, res.Current.Threshold)
	s.Require().NotNil(res.Next)
	s.Equal(300, res.Next.Threshold)
	s.InDelta(0.75, res.Progress, 1e-9)
}

func (s *TableSuite) TestResolveExactThreshold() {
	res := s.table.Resolve(300)

	s.Equal(3, res.Current.Level)
	s.Equal(0.0, res.Progress)
}

func (s *TableSuite) TestResolveMaxLevel() {
	res := s.table.Resolve(1_000_000)

	s.Equal(10, res.Current.Level)
	s.Equal("Legend", res.Current.Title)
	s.Nil(res.Next)
	s.Equal(1.0, res.Progress)
}

func (s *TableSuite) TestResolveNegativeIsZero() {
	res := s.table.Resolve(-50)

	s.Equal(0, res.XP)
	s.Equal(1, res.Current.Level)
}

func (s *TableSuite) TestResolveIsMonotonic() {
	prev := s.table.Resolve(0)
	for xp := 1; xp <= 25000; xp += 7 {
		cur := s.table.Resolve(xp)
		s.GreaterOrEqual(cur.Current.Level, prev.Current.Level, "xp=%d", xp)
		s.GreaterOrEqual(cur.Progress, 0.0)
		s.LessOrEqual(cur.Progress, 1.0)
		prev = cur
	}
}

func (s *TableSuite) TestNewTableRejectsEmpty() {
	_, err := NewTable(nil)
	s.ErrorIs(err, model.ErrInvalidLevelTable)
}

func (s *TableSuite) TestNewTableRejectsNonZeroStart() {
	_, err := NewTable([]Level{{Level: 1, Threshold: 10}})
	s.ErrorIs(err, model.ErrInvalidLevelTable)
}

func (s *TableSuite) TestNewTableRejectsNonIncreasingThresholds() {
	_, err := NewTable([]Level{
		{Level: 1, Threshold: 0},
		{Level: 2, Threshold: 100},
		{Level: 3, Threshold: 100},
	})
	s.ErrorIs(err, model.ErrInvalidLevelTable)
}

func (s *TableSuite) TestNewTableCopiesInput() {
	rows := []Level{{Level: 1, Title: "A", Threshold: 0}, {Level: 2, Title: "B", Threshold: 10}}
	table, err := NewTable(rows)
	s.Require().NoError(err)

	rows[1].Threshold = 5

	s.Equal(1, table.Resolve(7).Current.Level)
}

func (s *TableSuite) TestSingleLevelTable() {
	table := MustNewTable([]Level{{Level: 1, Title: "Only", Threshold: 0}})

	res := table.Resolve(42)
	s.Equal(1, res.Current.Level)
	s.Nil(res.Next)
	s.Equal(1.0, res.Progress)
}
