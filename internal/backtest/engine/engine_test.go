package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-pairs/internal/strategy"
	"github.com/stretchr/testify/suite"
)

type EngineTestSuite struct {
	suite.Suite
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (suite *EngineTestSuite) TestOnProcessDataCallbackWithProgress() {
	var progress []int
	callback := OnProcessDataCallback(func(current int, total int) error {
		progress = append(progress, current)
		return nil
	})

	for i := 1; i <= 5; i++ {
		err := callback(i, 5)
		suite.NoError(err)
	}

	suite.Equal([]int{1, 2, 3, 4, 5}, progress)
}

func (suite *EngineTestSuite) TestOnTickCallbackCanAbort() {
	stop := errors.New("stop")
	callback := OnTickCallback(func(_ time.Time, action strategy.TickAction) error {
		if action == strategy.TickActionClose {
			return stop
		}

		return nil
	})

	callbacks := LifecycleCallbacks{OnTick: &callback}

	suite.NoError((*callbacks.OnTick)(time.Now(), strategy.TickActionOpen))
	suite.ErrorIs((*callbacks.OnTick)(time.Now(), strategy.TickActionClose), stop)
	suite.Nil(callbacks.OnBacktestEnd)
}
