package check

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prbot/prbot/internal/model"
	"github.com/prbot/prbot/internal/platform"
)

func TestAggregateEmptyIsWaiting(t *testing.T) {
	assert.Equal(t, model.CheckStatusWaiting, Aggregate(nil))
}

func TestAggregateAllSuccessIsPass(t *testing.T) {
	runs := []platform.CheckRun{
		{Name: "build", Conclusion: "success", StartedAt: time.Unix(1, 0)},
		{Name: "test", Conclusion: "success", StartedAt: time.Unix(1, 0)},
	}
	assert.Equal(t, model.CheckStatusPass, Aggregate(runs))
}

func TestAggregateAnyFailureWins(t *testing.T) {
	runs := []platform.CheckRun{
		{Name: "build", Conclusion: "success", StartedAt: time.Unix(1, 0)},
		{Name: "test", Conclusion: "failure", StartedAt: time.Unix(1, 0)},
	}
	assert.Equal(t, model.CheckStatusFail, Aggregate(runs))
}

func TestAggregateUnconcludedIsWaiting(t *testing.T) {
	runs := []platform.CheckRun{
		{Name: "build", Conclusion: "success", StartedAt: time.Unix(1, 0)},
		{Name: "test", Conclusion: "", StartedAt: time.Unix(1, 0)},
	}
	assert.Equal(t, model.CheckStatusWaiting, Aggregate(runs))
}

func TestAggregateKeepsMostRecentRunPerName(t *testing.T) {
	runs := []platform.CheckRun{
		{Name: "build", Conclusion: "failure", StartedAt: time.Unix(1, 0)},
		{Name: "build", Conclusion: "success", StartedAt: time.Unix(2, 0)},
	}
	assert.Equal(t, model.CheckStatusPass, Aggregate(runs))
}

func TestAggregateNeutralConclusionsAreInert(t *testing.T) {
	runs := []platform.CheckRun{
		{Name: "build", Conclusion: "success", StartedAt: time.Unix(1, 0)},
		{Name: "lint", Conclusion: "neutral", StartedAt: time.Unix(1, 0)},
		{Name: "docs", Conclusion: "skipped", StartedAt: time.Unix(1, 0)},
	}
	assert.Equal(t, model.CheckStatusPass, Aggregate(runs))
}

func TestAggregateAllInertStaysWaiting(t *testing.T) {
	runs := []platform.CheckRun{
		{Name: "lint", Conclusion: "neutral", StartedAt: time.Unix(1, 0)},
		{Name: "docs", Conclusion: "skipped", StartedAt: time.Unix(1, 0)},
	}
	assert.Equal(t, model.CheckStatusWaiting, Aggregate(runs), "inert conclusions alone never constitute a pass")
}
