package collections

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type RingBufferTestSuite struct {
	suite.Suite
}

func TestRingBufferSuite(t *testing.T) {
	suite.Run(t, new(RingBufferTestSuite))
}

func (suite *RingBufferTestSuite) TestPushUntilFull() {
	buffer := NewRingBuffer[float64](3)

	for _, v := range []float64{1, 2, 3} {
		_, evicted := buffer.Push(v)
		suite.False(evicted)
	}

	suite.Equal(3, buffer.Len())
	suite.Equal([]float64{1, 2, 3}, buffer.Values())
}

func (suite *RingBufferTestSuite) TestEvictsOldest() {
	buffer := NewRingBuffer[int](3)
	for i := 1; i <= 3; i++ {
		buffer.Push(i)
	}

	old, evicted := buffer.Push(4)
	suite.True(evicted)
	suite.Equal(1, old)
	suite.Equal([]int{2, 3, 4}, buffer.Values())

	buffer.Push(5)
	buffer.Push(6)
	suite.Equal([]int{4, 5, 6}, buffer.Values())

	last, ok := buffer.Last()
	suite.True(ok)
	suite.Equal(6, last)
}

func (suite *RingBufferTestSuite) TestRecent() {
	buffer := NewRingBuffer[int](5)
	for i := 1; i <= 7; i++ {
		buffer.Push(i)
	}

	suite.Equal([]int{6, 7}, buffer.Recent(2))
	suite.Equal([]int{3, 4, 5, 6, 7}, buffer.Recent(10))
	suite.Empty(buffer.Recent(0))
}

func (suite *RingBufferTestSuite) TestEmptyAndReset() {
	buffer := NewRingBuffer[string](0)
	suite.Equal(1, buffer.Cap())

	_, ok := buffer.Last()
	suite.False(ok)

	buffer.Push("a")
	buffer.Reset()
	suite.Equal(0, buffer.Len())
	suite.Empty(buffer.Values())
}
