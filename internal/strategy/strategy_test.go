package strategy_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-pairs/internal/strategy"
	"github.com/rxtech-lab/argo-pairs/internal/types"
	"github.com/rxtech-lab/argo-pairs/mocks"
	argoErrors "github.com/rxtech-lab/argo-pairs/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type fakePositioner struct {
	opened   int
	closed   int
	openErr  error
	closeErr error
	panicMsg string
}

func (p *fakePositioner) OpenPosition(context.Context) error {
	if p.panicMsg != "" {
		panic(p.panicMsg)
	}

	p.opened++

	return p.openErr
}

func (p *fakePositioner) ClosePosition(context.Context) error {
	p.closed++

	return p.closeErr
}

type StrategyTestSuite struct {
	suite.Suite
	ctrl           *gomock.Controller
	ctx            context.Context
	tradingContext *mocks.MockTradingContext
	base           *strategy.Base
	positioner     *fakePositioner
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategyTestSuite))
}

func (suite *StrategyTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.ctx = context.Background()
	suite.tradingContext = mocks.NewMockTradingContext(suite.ctrl)
	suite.base = strategy.NewBase(suite.tradingContext, nil)
	suite.positioner = &fakePositioner{}
}

func (suite *StrategyTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *StrategyTestSuite) criterion(met bool, err error) *mocks.MockCriterion {
	c := mocks.NewMockCriterion(suite.ctrl)
	c.EXPECT().Init(gomock.Any()).Return(nil).AnyTimes()
	c.EXPECT().IsMet(gomock.Any()).Return(met, err).AnyTimes()

	return c
}

func (suite *StrategyTestSuite) add(role strategy.Role, c strategy.Criterion) {
	suite.Require().NoError(suite.base.AddCriterion(suite.ctx, role, c))
}

func (suite *StrategyTestSuite) TestEmptyStrategyOpens() {
	suite.Equal(strategy.TickActionOpen, suite.base.Tick(suite.ctx, suite.positioner))
	suite.Equal(1, suite.positioner.opened)
}

func (suite *StrategyTestSuite) TestDecisionTable() {
	tests := []struct {
		name     string
		common   []bool
		entry    []bool
		stopLoss []bool
		exit     []bool
		expected strategy.TickAction
	}{
		{"common not met blocks everything", []bool{false}, []bool{true}, []bool{true}, []bool{true}, strategy.TickActionNone},
		{"entry met opens", []bool{true}, []bool{true, true}, nil, []bool{true}, strategy.TickActionOpen},
		{"entry wins over exit", nil, []bool{true}, []bool{true}, []bool{true}, strategy.TickActionOpen},
		{"stop loss closes", nil, []bool{false}, []bool{true}, []bool{false}, strategy.TickActionClose},
		{"exit closes", nil, []bool{false}, nil, []bool{true, true}, strategy.TickActionClose},
		{"partial exit does nothing", nil, []bool{false}, nil, []bool{true, false}, strategy.TickActionNone},
		{"empty exit never closes", nil, []bool{false}, nil, nil, strategy.TickActionNone},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			base := strategy.NewBase(suite.tradingContext, nil)
			positioner := &fakePositioner{}

			groups := map[strategy.Role][]bool{
				strategy.RoleCommon:   tc.common,
				strategy.RoleEntry:    tc.entry,
				strategy.RoleStopLoss: tc.stopLoss,
				strategy.RoleExit:     tc.exit,
			}

			for role, results := range groups {
				for _, met := range results {
					suite.Require().NoError(base.AddCriterion(suite.ctx, role, suite.criterion(met, nil)))
				}
			}

			suite.Equal(tc.expected, base.Tick(suite.ctx, positioner))

			switch tc.expected {
			case strategy.TickActionOpen:
				suite.Equal(1, positioner.opened)
				suite.Equal(0, positioner.closed)
			case strategy.TickActionClose:
				suite.Equal(0, positioner.opened)
				suite.Equal(1, positioner.closed)
			default:
				suite.Equal(0, positioner.opened)
				suite.Equal(0, positioner.closed)
			}
		})
	}
}

func (suite *StrategyTestSuite) TestShortCircuitStopsAtFirstUnmet() {
	first := mocks.NewMockCriterion(suite.ctrl)
	first.EXPECT().Init(gomock.Any()).Return(nil)
	first.EXPECT().IsMet(gomock.Any()).Return(false, nil).Times(1)

	second := mocks.NewMockCriterion(suite.ctrl)
	second.EXPECT().Init(gomock.Any()).Return(nil)
	second.EXPECT().IsMet(gomock.Any()).Times(0)

	suite.add(strategy.RoleEntry, first)
	suite.add(strategy.RoleEntry, second)

	suite.Equal(strategy.TickActionNone, suite.base.Tick(suite.ctx, suite.positioner))
}

func (suite *StrategyTestSuite) TestViolationCountsAsNotMet() {
	suite.add(strategy.RoleEntry, suite.criterion(true, argoErrors.New(argoErrors.ErrCodeCriterionViolation, "flat spread")))

	suite.Equal(strategy.TickActionNone, suite.base.Tick(suite.ctx, suite.positioner))
	suite.Equal(0, suite.positioner.opened)
}

func (suite *StrategyTestSuite) TestPriceUnavailableAbortsAction() {
	suite.positioner.openErr = argoErrors.NewPriceUnavailableError("GLD")

	suite.Equal(strategy.TickActionNone, suite.base.Tick(suite.ctx, suite.positioner))
	suite.Equal(1, suite.positioner.opened)
}

func (suite *StrategyTestSuite) TestOtherOpenErrorIsLogged() {
	suite.positioner.openErr = errors.New("broker rejected")

	suite.Equal(strategy.TickActionNone, suite.base.Tick(suite.ctx, suite.positioner))
}

func (suite *StrategyTestSuite) TestPanicIsRecovered() {
	suite.positioner.panicMsg = "boom"

	suite.NotPanics(func() {
		suite.Equal(strategy.TickActionNone, suite.base.Tick(suite.ctx, suite.positioner))
	})
}

func (suite *StrategyTestSuite) TestInitRunsOnceOnAdd() {
	c := mocks.NewMockCriterion(suite.ctrl)
	c.EXPECT().Init(gomock.Any()).Return(nil).Times(1)

	suite.add(strategy.RoleStopLoss, c)
	suite.Len(suite.base.Criteria(strategy.RoleStopLoss), 1)
}

func (suite *StrategyTestSuite) TestInitFailureRejectsCriterion() {
	c := mocks.NewMockCriterion(suite.ctrl)
	c.EXPECT().Init(gomock.Any()).Return(errors.New("no history"))

	err := suite.base.AddCriterion(suite.ctx, strategy.RoleEntry, c)
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeStrategyConfigError))
	suite.Empty(suite.base.Criteria(strategy.RoleEntry))
}

func (suite *StrategyTestSuite) TestUnknownRole() {
	err := suite.base.AddCriterion(suite.ctx, strategy.Role("later"), suite.criterion(true, nil))
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeInvalidParameter))
}

func (suite *StrategyTestSuite) TestRemoveCriterion() {
	blocker := suite.criterion(false, nil)
	suite.add(strategy.RoleEntry, blocker)

	suite.Equal(strategy.TickActionNone, suite.base.Tick(suite.ctx, suite.positioner))

	suite.True(suite.base.RemoveCriterion(strategy.RoleEntry, blocker))
	suite.False(suite.base.RemoveCriterion(strategy.RoleEntry, blocker))

	suite.Equal(strategy.TickActionOpen, suite.base.Tick(suite.ctx, suite.positioner))
}

func (suite *StrategyTestSuite) TestAddSymbolRegistersWithContext() {
	suite.tradingContext.EXPECT().AddSymbol(gomock.Any(), "GLD").Return(nil)
	suite.tradingContext.EXPECT().AddSymbol(gomock.Any(), "BAD").Return(argoErrors.New(argoErrors.ErrCodeUnresolvableInstrument, "bad"))

	suite.NoError(suite.base.AddSymbol(suite.ctx, "GLD"))
	suite.Error(suite.base.AddSymbol(suite.ctx, "BAD"))
	suite.Equal([]string{"GLD"}, suite.base.Symbols())
}

func (suite *StrategyTestSuite) TestOpenLegsRejectsAZeroLegBeforePlacing() {
	err := suite.base.OpenLegs(suite.ctx,
		strategy.Leg{Symbol: "USO", Buy: false, Amount: 1},
		strategy.Leg{Symbol: "GLD", Buy: true, Amount: 0},
	)
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeCriterionViolation))
}

func (suite *StrategyTestSuite) TestOpenLegsPlacesInOrder() {
	gomock.InOrder(
		suite.tradingContext.EXPECT().Order(gomock.Any(), "USO", false, 3).Return(types.Order{}, nil),
		suite.tradingContext.EXPECT().Order(gomock.Any(), "GLD", true, 2).Return(types.Order{}, nil),
	)

	suite.NoError(suite.base.OpenLegs(suite.ctx,
		strategy.Leg{Symbol: "USO", Buy: false, Amount: 3},
		strategy.Leg{Symbol: "GLD", Buy: true, Amount: 2},
	))
}

func (suite *StrategyTestSuite) TestOpenLegsClosesPlacedLegsOnFailure() {
	placed := types.NewOrder(1, "USO", -3, 70, time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC))
	rejected := argoErrors.New(argoErrors.ErrCodeInvalidOrder, "insufficient buying power")

	gomock.InOrder(
		suite.tradingContext.EXPECT().Order(gomock.Any(), "USO", false, 3).Return(placed, nil),
		suite.tradingContext.EXPECT().Order(gomock.Any(), "GLD", true, 2).Return(types.Order{}, rejected),
		suite.tradingContext.EXPECT().LastOrder("USO").Return(placed, nil),
		suite.tradingContext.EXPECT().Close(gomock.Any(), placed).Return(types.ClosedOrder{}, nil),
	)

	err := suite.base.OpenLegs(suite.ctx,
		strategy.Leg{Symbol: "USO", Buy: false, Amount: 3},
		strategy.Leg{Symbol: "GLD", Buy: true, Amount: 2},
	)
	suite.ErrorIs(err, rejected)
}

func (suite *StrategyTestSuite) TestOpenLegsKeepsTheOrderErrorWhenUnwindFails() {
	rejected := argoErrors.New(argoErrors.ErrCodeInvalidOrder, "insufficient buying power")

	gomock.InOrder(
		suite.tradingContext.EXPECT().Order(gomock.Any(), "USO", false, 3).Return(types.Order{}, nil),
		suite.tradingContext.EXPECT().Order(gomock.Any(), "GLD", true, 2).Return(types.Order{}, rejected),
		suite.tradingContext.EXPECT().LastOrder("USO").Return(types.Order{}, errors.New("context closed")),
	)

	err := suite.base.OpenLegs(suite.ctx,
		strategy.Leg{Symbol: "USO", Buy: false, Amount: 3},
		strategy.Leg{Symbol: "GLD", Buy: true, Amount: 2},
	)
	suite.ErrorIs(err, rejected)
}
