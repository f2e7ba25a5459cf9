package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlowContext_Merge(t *testing.T) {
	fctx := NewFlowContext(FlowCaseIntake)

	fctx.Merge(map[string]string{"reference_number": "AYU166", "outcome": ""})
	fctx.Merge(map[string]string{"outcome": "dismissal"})
	fctx.Merge(map[string]string{"outcome": "settlement"})

	assert.Equal(t, "AYU166", fctx.Data["reference_number"])
	assert.Equal(t, "settlement", fctx.Data["outcome"])
}

func TestFlowContext_MergeNilData(t *testing.T) {
	fctx := &FlowContext{Name: FlowCaseIntake, Step: 1}

	fctx.Merge(map[string]string{"reference_number": "AYU166"})

	assert.Equal(t, "AYU166", fctx.Data["reference_number"])
}

func TestConversation_RecentHistory(t *testing.T) {
	conv := &Conversation{ChatID: "c1"}
	conv.Append(RoleUser, "one")
	conv.Append(RoleAssistant, "two")
	conv.Append(RoleUser, "three")

	assert.Len(t, conv.RecentHistory(2), 2)
	assert.Equal(t, "two", conv.RecentHistory(2)[0].Text)
	assert.Len(t, conv.RecentHistory(10), 3)
	assert.Len(t, conv.RecentHistory(0), 3)
}
