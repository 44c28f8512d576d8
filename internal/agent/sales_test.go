package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/proptalk/proptalk/internal/model"
)

func scoredFixture() []model.ScoredProperty {
	return []model.ScoredProperty{
		{
			PropertyRecord: model.PropertyRecord{
				ProjectName:   "Sobha Dream Acres",
				Developer:     "Sobha",
				Location:      "Panathur",
				ProjectType:   "Apartment",
				PricePerSqft:  "₹8,200",
				ProjectStatus: "Under Construction",
			},
			Score:        110,
			MatchedTerms: []string{"sobha", "panathur"},
		},
		{
			PropertyRecord: model.PropertyRecord{
				ProjectName: "Brigade Utopia",
				Developer:   "Brigade",
			},
			Score:        50,
			MatchedTerms: []string{"brigade"},
		},
	}
}

func TestSalesPitchNoResults(t *testing.T) {
	client := new(mockAIClient)

	sales := NewSalesAgent(client, nil)
	reply := sales.Pitch(context.Background(), model.CriteriaMap{}, nil, "anything")

	assert.Contains(t, reply, "couldn't find exact matches")
	assert.Contains(t, reply, "**Expand the location**")
	assert.Contains(t, reply, "**Adjust the budget**")
	assert.Contains(t, reply, "**Different developers**")
	client.AssertNotCalled(t, "ChatCompletion")
}

func TestSalesPitchUsesModelReply(t *testing.T) {
	client := new(mockAIClient)
	client.On("IsEnabled").Return(true)
	client.On("ChatCompletion", mock.Anything, mock.MatchedBy(func(req ChatCompletionRequest) bool {
		content := req.Messages[0].Content
		return strings.Contains(content, "**Sobha Dream Acres** by Sobha") &&
			strings.Contains(content, "TOTAL MATCHES: 2") &&
			strings.Contains(content, "show me sobha")
	})).Return(chatReply("  Sobha Dream Acres is a strong fit.  "), nil)

	sales := NewSalesAgent(client, nil)
	reply := sales.Pitch(context.Background(), model.CriteriaMap{"keywords": []string{"sobha"}}, scoredFixture(), "show me sobha")

	assert.Equal(t, "Sobha Dream Acres is a strong fit.", reply)
	client.AssertExpectations(t)
}

func TestSalesPitchFallbackOnError(t *testing.T) {
	client := new(mockAIClient)
	client.On("IsEnabled").Return(true)
	client.On("ChatCompletion", mock.Anything, mock.Anything).
		Return(nil, errors.New("upstream unavailable"))

	sales := NewSalesAgent(client, nil)
	reply := sales.Pitch(context.Background(), model.CriteriaMap{}, scoredFixture(), "anything")

	assert.Equal(t, "I found 2 properties matching your criteria. Let me show you the top options.", reply)
}

func TestSalesPitchFallbackWhenDisabled(t *testing.T) {
	client := new(mockAIClient)
	client.On("IsEnabled").Return(false)

	sales := NewSalesAgent(client, nil)
	reply := sales.Pitch(context.Background(), model.CriteriaMap{}, scoredFixture(), "anything")

	assert.Equal(t, "I found 2 properties matching your criteria. Let me show you the top options.", reply)
	client.AssertNotCalled(t, "ChatCompletion")
}

func TestSalesPitchStreamAccumulates(t *testing.T) {
	client := new(mockAIClient)
	client.On("IsEnabled").Return(true)
	client.On("ChatCompletionStream", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			callback := args.Get(2).(StreamCallback)
			_ = callback(&StreamChunk{Content: "Sobha "})
			_ = callback(&StreamChunk{ThinkingContent: "weighing options"})
			_ = callback(&StreamChunk{Content: "looks great.", Done: true})
		}).Return(nil)

	var deltas []string
	sales := NewSalesAgent(client, nil)
	reply := sales.PitchStream(context.Background(), model.CriteriaMap{}, scoredFixture(), "sobha?", func(delta string) error {
		deltas = append(deltas, delta)
		return nil
	})

	assert.Equal(t, "Sobha looks great.", reply)
	assert.Equal(t, []string{"Sobha ", "looks great."}, deltas)
}

func TestSalesPitchStreamFallbackWhenNothingArrived(t *testing.T) {
	client := new(mockAIClient)
	client.On("IsEnabled").Return(true)
	client.On("ChatCompletionStream", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("connection reset"))

	var deltas []string
	sales := NewSalesAgent(client, nil)
	reply := sales.PitchStream(context.Background(), model.CriteriaMap{}, scoredFixture(), "sobha?", func(delta string) error {
		deltas = append(deltas, delta)
		return nil
	})

	assert.Equal(t, "I found 2 properties matching your criteria. Let me show you the top options.", reply)
	assert.Equal(t, []string{reply}, deltas)
}

func TestSalesPitchStreamKeepsPartialOnError(t *testing.T) {
	client := new(mockAIClient)
	client.On("IsEnabled").Return(true)
	client.On("ChatCompletionStream", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			callback := args.Get(2).(StreamCallback)
			_ = callback(&StreamChunk{Content: "Partial answer"})
		}).Return(errors.New("connection reset"))

	sales := NewSalesAgent(client, nil)
	reply := sales.PitchStream(context.Background(), model.CriteriaMap{}, scoredFixture(), "sobha?", nil)

	assert.Equal(t, "Partial answer", reply)
}

func TestSalesPitchStreamNoResults(t *testing.T) {
	client := new(mockAIClient)

	var deltas []string
	sales := NewSalesAgent(client, nil)
	reply := sales.PitchStream(context.Background(), model.CriteriaMap{}, nil, "anything", func(delta string) error {
		deltas = append(deltas, delta)
		return nil
	})

	assert.Contains(t, reply, "couldn't find exact matches")
	assert.Equal(t, []string{reply}, deltas)
	client.AssertNotCalled(t, "ChatCompletionStream")
}

func TestBuildPropertyContext(t *testing.T) {
	got := buildPropertyContext(scoredFixture())

	assert.Contains(t, got, "**Sobha Dream Acres** by Sobha")
	assert.Contains(t, got, "- Location: Panathur")
	assert.Contains(t, got, "- Type: Apartment")
	assert.Contains(t, got, "- Price: ₹₹8,200 per sq ft")
	assert.Contains(t, got, "- Status: Under Construction")
	assert.Contains(t, got, "- Match Score: 110.0 (Matches: sobha, panathur)")

	// Blank fields render as placeholders.
	assert.Contains(t, got, "- Location: Unknown")
	assert.Contains(t, got, "- Price: ₹N/A per sq ft")
	assert.Contains(t, got, "- Status: N/A")
}

func TestBuildPropertyContextCapsAtFive(t *testing.T) {
	results := make([]model.ScoredProperty, 8)
	for i := range results {
		results[i].ProjectName = "Project " + string(rune('A'+i))
	}

	got := buildPropertyContext(results)

	assert.Contains(t, got, "**Project E**")
	assert.NotContains(t, got, "**Project F**")
}
