package projector

import (
	"github.com/prbot/prbot/internal/model"
	"github.com/prbot/prbot/internal/syncstate"
)

func stateAllGood() *syncstate.State {
	return &syncstate.State{
		Owner:         "octocat",
		Name:          "hello-world",
		Number:        1,
		HeadSHA:       "abc123",
		ValidPRTitle:  true,
		CheckStatus:   model.CheckStatusPass,
		QaStatus:      model.QaStatusPass,
		Mergeable:     true,
		MergeStrategy: model.MergeStrategyMerge,
	}
}
