package completion_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optisheet/internal/completion"
	"optisheet/internal/log"
	loglogrus "optisheet/internal/log/logrus"
	"optisheet/internal/service"
	"optisheet/internal/testutil"
)

func TestBuildPromptEmbedsInstructionAndText(t *testing.T) {
	p := completion.BuildPrompt("Is this spam", "Buy now!!!")

	assert.Equal(t, "Is this spam: 'Buy now!!!'? (Answer with Yes or No)", p)
}

func TestAsk(t *testing.T) {
	tests := map[string]struct {
		setup      func(c *testutil.FakeCompleter)
		expFailed  bool
		expText    string
		expErrText string
	}{
		"A plain answer should be trimmed.": {
			setup:   func(c *testutil.FakeCompleter) { c.Default = "  Yes.\n" },
			expText: "Yes.",
		},
		"A backend error should become a failed verdict.": {
			setup: func(c *testutil.FakeCompleter) {
				c.FailWhen("spam", fmt.Errorf("%w: status 500", service.ErrAPI))
			},
			expFailed:  true,
			expErrText: "Error: api error: status 500",
		},
		"An answer carrying the error marker is a failure.": {
			setup:      func(c *testutil.FakeCompleter) { c.Default = "Error: quota" },
			expFailed:  true,
			expErrText: "Error: quota",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			fc := testutil.NewFakeCompleter()
			test.setup(fc)
			c, err := completion.NewClient(completion.ClientConfig{Completer: fc})
			require.NoError(t, err)

			v := c.Ask(context.Background(), "Buy now!!!", "Is this spam")

			assert.Equal(t, test.expFailed, v.Failed())
			assert.Equal(t, test.expText, v.Text())
			assert.Equal(t, test.expErrText, v.Error())
		})
	}
}

func TestAskSendsPromptAndCap(t *testing.T) {
	fc := testutil.NewFakeCompleter()
	c, err := completion.NewClient(completion.ClientConfig{Completer: fc, MaxTokens: 7})
	require.NoError(t, err)

	c.Ask(context.Background(), "Buy now!!!", "Is this spam")

	reqs := fc.Requests()
	require.Len(t, reqs, 1)
	assert.Contains(t, reqs[0].Prompt, "Is this spam")
	assert.Contains(t, reqs[0].Prompt, "Buy now!!!")
	assert.Equal(t, completion.SystemPrompt, reqs[0].System)
	assert.Equal(t, 7, reqs[0].MaxTokens)
}

func TestAskTimeout(t *testing.T) {
	fc := testutil.NewFakeCompleter()
	fc.Block = make(chan struct{})
	defer close(fc.Block)

	c, err := completion.NewClient(completion.ClientConfig{Completer: fc, Timeout: 20 * time.Millisecond})
	require.NoError(t, err)

	v := c.Ask(context.Background(), "t", "i")

	assert.True(t, v.Failed())
	assert.Contains(t, v.Error(), context.DeadlineExceeded.Error())
}

func TestAskLogsContextValues(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.JSONFormatter{})

	c, err := completion.NewClient(completion.ClientConfig{
		Completer: testutil.NewFakeCompleter(),
		Logger:    loglogrus.NewLogrus(logrus.NewEntry(l)),
	})
	require.NoError(t, err)

	ctx := log.CtxWithValues(context.Background(), log.Kv{"run": "r1"})
	v := c.Ask(ctx, "t", "i")

	require.False(t, v.Failed())
	assert.Contains(t, buf.String(), `"run":"r1"`)
	assert.Contains(t, buf.String(), `"svc":"completion.Client"`)
}

func TestNewClientRequiresCompleter(t *testing.T) {
	_, err := completion.NewClient(completion.ClientConfig{})
	assert.Error(t, err)
}

func TestVerdict(t *testing.T) {
	a := completion.Answer("No")
	assert.False(t, a.Failed())
	assert.Equal(t, "No", a.String())
	assert.Empty(t, a.Error())

	f := completion.Failure("boom")
	assert.True(t, f.Failed())
	assert.Empty(t, f.Text())
	assert.Equal(t, "Error: boom", f.String())

	assert.Equal(t, "Error: again", completion.Failure("Error: again").Error())
}
