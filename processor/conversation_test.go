package processor

import (
	"encoding/binary"
	"errors"
	"sync"
	"testing"

	"go.qspeak.app/qspeak/event"
	"go.qspeak.app/qspeak/llm"
	"go.qspeak.app/qspeak/mcp"
	"go.qspeak.app/qspeak/recorder"
	"go.qspeak.app/qspeak/state"
	"go.qspeak.app/qspeak/stt"
)

type fakeClipboard struct {
	mu       sync.Mutex
	copied   []string
	pasted   []string
	pasteErr error
}

func (f *fakeClipboard) SetText(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.copied = append(f.copied, text)
	return nil
}

func (f *fakeClipboard) SetTextAndPaste(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pasteErr != nil {
		return f.pasteErr
	}
	f.pasted = append(f.pasted, text)
	return nil
}

func (f *fakeClipboard) SelectedText() (string, error) { return "", errors.New("nothing selected") }

func newConversationProcessor(t *testing.T, store *state.Store, bus *Processor, clip Clipboard) *ConversationProcessor {
	t.Helper()
	return NewConversationProcessor(store, bus, recorder.New(nil), stt.NewRegistry(),
		llm.NewClient(), mcp.NewRegistry(nil), clip, NopScreenshotter{}, t.TempDir(), nil)
}

func TestPersonaAndTextFromTranscription(t *testing.T) {
	personas := []state.Persona{
		{ID: "1", Name: "Email", VoiceCommand: "hey email"},
		{ID: "2", Name: "Notes", VoiceCommand: "notes"},
	}

	tests := []struct {
		name        string
		text        string
		wantPersona string
		wantText    string
	}{
		{"no command", "just dictating some text", "", "just dictating some text"},
		{"two word command", "Hey email, write to Anna about the offsite", "1", "write to Anna about the offsite"},
		{"leading punctuation", "...Hey email. Summarize this", "1", "Summarize this"},
		{"split command keeps full text", "Hey, email. Summarize this", "1", "Hey, email. Summarize this"},
		{"single word command", "Notes! buy milk", "2", "buy milk"},
		{"command only", "Notes", "2", ""},
		{"mid sentence is not a command", "my email notes are ready", "", "my email notes are ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			persona, text := personaAndTextFromTranscription(tt.text, personas)
			if tt.wantPersona == "" {
				if persona != nil {
					t.Fatalf("matched persona %q, want none", persona.ID)
				}
			} else if persona == nil || persona.ID != tt.wantPersona {
				t.Fatalf("persona = %v, want id %q", persona, tt.wantPersona)
			}
			if text != tt.wantText {
				t.Fatalf("text = %q, want %q", text, tt.wantText)
			}
		})
	}
}

func TestTextMessagePassthroughPastesDirectly(t *testing.T) {
	store := newTestStore(t)
	clip := &fakeClipboard{}
	p := newConversationProcessor(t, store, newTestBus(t), clip)

	if err := p.handle(event.ActionTextMessage{Text: "hello world"}); err != nil {
		t.Fatal(err)
	}

	ctx := store.Context()
	if ctx.Conversation.State != state.ConversationIdle {
		t.Fatalf("state = %s, want Idle", ctx.Conversation.State)
	}
	if len(clip.pasted) != 1 || clip.pasted[0] != "hello world" {
		t.Fatalf("pasted = %v", clip.pasted)
	}
	conv := ctx.Conversation.Conversation
	if len(conv) != 1 || conv[0].Role != "user" {
		t.Fatalf("conversation = %+v", conv)
	}
}

func TestPasteFailureRequestsAccessibilityPermission(t *testing.T) {
	store := newTestStore(t)
	bus := newRunningBus(t)
	rec := recordEvents(bus)
	clip := &fakeClipboard{pasteErr: errors.New("paste blocked")}
	p := newConversationProcessor(t, store, bus, clip)

	if err := p.handle(event.ActionTextMessage{Text: "hello"}); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "permission check dispatched", func() bool {
		return rec.seen("ActionCheckAndRequestAccessibilityPermission")
	})
	errs := store.Context().Errors
	if len(errs) != 1 || errs[0].Message != "Missing accessibility permissions" {
		t.Fatalf("errors = %+v", errs)
	}
}

func TestTransformationInsertsSystemMessageOnce(t *testing.T) {
	store := newTestStore(t)
	p := newConversationProcessor(t, store, newTestBus(t), &fakeClipboard{})

	// A selected model that is not in the catalog keeps the transform
	// goroutine away from the network.
	store.Update(func(c *state.AppStateContext) {
		c.ActivePersona = &state.Persona{ID: "1", Name: "Email", SystemPrompt: "You write emails."}
		c.ConversationModel = strPtr("missing-model")
	})

	if err := p.handle(event.ActionTextMessage{Text: "first"}); err != nil {
		t.Fatal(err)
	}

	ctx := store.Context()
	if ctx.Conversation.State != state.ConversationTransforming {
		t.Fatalf("state = %s, want Transforming", ctx.Conversation.State)
	}
	conv := ctx.Conversation.Conversation
	if len(conv) != 2 || conv[0].Role != "system" || conv[1].Role != "user" {
		t.Fatalf("conversation roles = %+v", conv)
	}
	if got, _ := conv[0].LastText(); got != "You write emails." {
		t.Fatalf("system prompt = %q", got)
	}

	waitFor(t, "missing model reported", func() bool {
		errs := store.Context().Errors
		return len(errs) == 1 && errs[0].Message == "Transformation model not found. Please pick a model in the settings."
	})

	// A later message in the same session reuses the existing system
	// message.
	store.Update(func(c *state.AppStateContext) {
		c.Conversation.State = state.ConversationIdle
	})
	if err := p.handle(event.ActionTextMessage{Text: "second"}); err != nil {
		t.Fatal(err)
	}
	systems := 0
	for _, m := range store.Context().Conversation.Conversation {
		if m.Role == "system" {
			systems++
		}
	}
	if systems != 1 {
		t.Fatalf("system messages = %d, want 1", systems)
	}
}

func TestChatMessagesInjectsPersonaExamples(t *testing.T) {
	persona := &state.Persona{
		Name: "Email",
		Examples: []state.PersonaExample{
			{Question: "write a greeting", Answer: "Hi team,"},
			{Question: "   ", Answer: "skipped"},
		},
	}
	conversation := []state.ConversationMessage{
		{Role: "system", Content: []state.MessageContent{state.TextContent("You write emails.")}},
		{Role: "user", Content: []state.MessageContent{state.TextContent("thank Anna")}},
	}

	messages := chatMessages(conversation, persona)
	if len(messages) != 4 {
		t.Fatalf("messages = %d, want 4", len(messages))
	}
	roles := []string{messages[0].Role, messages[1].Role, messages[2].Role, messages[3].Role}
	want := []string{"system", "user", "assistant", "user"}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("roles = %v, want %v", roles, want)
		}
	}
}

func TestChatMessagesWithoutSystemSkipsExamples(t *testing.T) {
	persona := &state.Persona{Examples: []state.PersonaExample{{Question: "q", Answer: "a"}}}
	conversation := []state.ConversationMessage{
		{Role: "user", Content: []state.MessageContent{state.TextContent("hello")}},
	}
	if got := chatMessages(conversation, persona); len(got) != 1 {
		t.Fatalf("messages = %d, want 1", len(got))
	}
}

func TestInvalidToolCallNameResetsSession(t *testing.T) {
	store := newTestStore(t)
	p := newConversationProcessor(t, store, newTestBus(t), &fakeClipboard{})

	store.Update(func(c *state.AppStateContext) {
		c.Conversation.State = state.ConversationTransforming
	})

	if err := p.handle(event.ActionTransformationToolCall{ChunkToolCall: event.ChunkToolCall{
		ID: "call_1", Name: "no_separator", Arguments: "{}",
	}}); err != nil {
		t.Fatal(err)
	}

	ctx := store.Context()
	if ctx.Conversation.State != state.ConversationIdle {
		t.Fatalf("state = %s, want Idle", ctx.Conversation.State)
	}
	if len(ctx.Errors) != 1 || ctx.Errors[0].Message != "Invalid tool call name: no_separator" {
		t.Fatalf("errors = %+v", ctx.Errors)
	}
}

func TestToolCallIsRecordedAndMerged(t *testing.T) {
	store := newTestStore(t)
	p := newConversationProcessor(t, store, newTestBus(t), &fakeClipboard{})

	store.Update(func(c *state.AppStateContext) {
		c.Conversation.State = state.ConversationTransforming
	})

	for i, id := range []string{"call_1", "call_2"} {
		if err := p.handle(event.ActionTransformationToolCall{ChunkToolCall: event.ChunkToolCall{
			Index: i, ID: id, Name: "github--search", Arguments: "{}",
		}}); err != nil {
			t.Fatal(err)
		}
	}

	ctx := store.Context()
	conv := ctx.Conversation.Conversation
	if len(conv) != 1 || !conv[0].IsToolCall() || len(conv[0].ToolCalls) != 2 {
		t.Fatalf("conversation = %+v", conv)
	}
	if tc := conv[0].ToolCalls[0].Function; tc.ClientName != "github" || tc.Name != "search" {
		t.Fatalf("tool call = %+v", tc)
	}
	if got := ctx.Conversation.PendingToolCallIDs; len(got) != 2 {
		t.Fatalf("pending = %v", got)
	}
}

func TestToolCallResultWaitsForAllPendingCalls(t *testing.T) {
	store := newTestStore(t)
	p := newConversationProcessor(t, store, newTestBus(t), &fakeClipboard{})

	store.Update(func(c *state.AppStateContext) {
		c.Conversation.State = state.ConversationTransforming
		c.Conversation.PendingToolCallIDs = []string{"call_1", "call_2"}
	})

	if err := p.handle(event.ActionTransformationToolCallResult{ToolCallResult: event.ToolCallResult{
		ToolCallID: "call_1", Content: "result one",
	}}); err != nil {
		t.Fatal(err)
	}

	ctx := store.Context()
	if got := ctx.Conversation.PendingToolCallIDs; len(got) != 1 || got[0] != "call_2" {
		t.Fatalf("pending = %v", got)
	}
	conv := ctx.Conversation.Conversation
	if len(conv) != 1 || !conv[0].IsToolResult() || conv[0].ToolCallID != "call_1" {
		t.Fatalf("conversation = %+v", conv)
	}
	if ctx.Conversation.State != state.ConversationTransforming {
		t.Fatalf("state = %s, want Transforming while a call is pending", ctx.Conversation.State)
	}
}

func TestFinishTransformationCopiesAndPastes(t *testing.T) {
	store := newTestStore(t)
	clip := &fakeClipboard{}
	p := newConversationProcessor(t, store, newTestBus(t), clip)

	store.Update(func(c *state.AppStateContext) {
		c.ActivePersona = &state.Persona{ID: "1", Name: "Email", PasteOnFinish: true}
		c.Conversation.State = state.ConversationTransforming
		c.Conversation.Conversation = []state.ConversationMessage{
			{Role: "user", Content: []state.MessageContent{state.TextContent("thank Anna")}},
			{Role: "assistant", Content: []state.MessageContent{state.TextContent("Hi Anna, thank you!")}},
		}
	})

	if err := p.handle(event.ActionTransformationSuccess{}); err != nil {
		t.Fatal(err)
	}

	if got := store.Context().Conversation.State; got != state.ConversationIdle {
		t.Fatalf("state = %s, want Idle", got)
	}
	if len(clip.pasted) != 1 || clip.pasted[0] != "Hi Anna, thank you!" {
		t.Fatalf("pasted = %v", clip.pasted)
	}
	if len(clip.copied) != 1 || clip.copied[0] != "Hi Anna, thank you!" {
		t.Fatalf("copied = %v", clip.copied)
	}
}

func TestFinishTransformationKeepsWaitingOnToolCalls(t *testing.T) {
	store := newTestStore(t)
	p := newConversationProcessor(t, store, newTestBus(t), &fakeClipboard{})

	store.Update(func(c *state.AppStateContext) {
		c.Conversation.State = state.ConversationTransforming
		c.Conversation.Conversation = []state.ConversationMessage{
			{Role: "assistant", ToolCalls: []state.ToolCall{{ID: "call_1"}}},
		}
	})

	if err := p.handle(event.ActionTransformationSuccess{}); err != nil {
		t.Fatal(err)
	}
	if got := store.Context().Conversation.State; got != state.ConversationTransforming {
		t.Fatalf("state = %s, want Transforming until results arrive", got)
	}
}

func TestStartNewConversationResetsSession(t *testing.T) {
	store := newTestStore(t)
	p := newConversationProcessor(t, store, newTestBus(t), &fakeClipboard{})

	id := "h1"
	store.Update(func(c *state.AppStateContext) {
		c.History.CurrentHistoryID = &id
		c.Conversation.State = state.ConversationTransforming
		c.Conversation.Conversation = []state.ConversationMessage{textMessage("user", "old")}
		c.Conversation.PendingToolCallIDs = []string{"call_1"}
	})

	if err := p.handle(event.ActionStartNewConversation{}); err != nil {
		t.Fatal(err)
	}

	ctx := store.Context()
	if ctx.Conversation.State != state.ConversationIdle || ctx.Conversation.Conversation != nil {
		t.Fatalf("conversation not reset: %+v", ctx.Conversation)
	}
	if ctx.Conversation.PendingToolCallIDs != nil || ctx.History.CurrentHistoryID != nil {
		t.Fatalf("session leftovers: %+v", ctx.Conversation)
	}
}

func TestLoadHistoryConversation(t *testing.T) {
	store := newTestStore(t)
	p := newConversationProcessor(t, store, newTestBus(t), &fakeClipboard{})

	current := "h2"
	store.Update(func(c *state.AppStateContext) {
		c.History.History = []state.History{
			{ID: "h1", Conversation: []state.ConversationMessage{textMessage("user", "old chat")}},
		}
		c.History.CurrentHistoryID = &current
	})

	if err := p.handle(event.ActionLoadHistoryConversation{HistoryID: "h1"}); err != nil {
		t.Fatal(err)
	}

	ctx := store.Context()
	if len(ctx.Conversation.Conversation) != 1 {
		t.Fatalf("conversation = %+v", ctx.Conversation.Conversation)
	}
	if got, _ := ctx.Conversation.Conversation[0].LastText(); got != "old chat" {
		t.Fatalf("loaded text = %q", got)
	}
	if ctx.History.CurrentHistoryID != nil {
		t.Fatal("current history id must be cleared on load")
	}
}

func TestDictionaryAddAndDelete(t *testing.T) {
	store := newTestStore(t)
	p := newConversationProcessor(t, store, newTestBus(t), &fakeClipboard{})

	for _, item := range []string{"qSpeak", "Kubernetes"} {
		if err := p.handle(event.ActionAddDictionaryItem{Item: item}); err != nil {
			t.Fatal(err)
		}
	}
	if err := p.handle(event.ActionDeleteDictionaryItem{Item: "qSpeak"}); err != nil {
		t.Fatal(err)
	}

	got := store.Context().Conversation.Dictionary
	if len(got) != 1 || got[0] != "Kubernetes" {
		t.Fatalf("dictionary = %v", got)
	}
}

func TestAddTextIgnoredWhileTransforming(t *testing.T) {
	store := newTestStore(t)
	p := newConversationProcessor(t, store, newTestBus(t), &fakeClipboard{})

	store.Update(func(c *state.AppStateContext) {
		c.Conversation.State = state.ConversationTransforming
	})
	if err := p.handle(event.ActionAddText{Text: "late"}); err != nil {
		t.Fatal(err)
	}
	if got := store.Context().Conversation.Conversation; len(got) != 0 {
		t.Fatalf("conversation = %+v", got)
	}
}

func TestDecodeBinaryFile(t *testing.T) {
	meta := []byte(`{"file_size": 3, "file_type": "image/png"}`)
	data := make([]byte, 4)
	binary.BigEndian.PutUint32(data, uint32(len(meta)))
	data = append(data, meta...)
	data = append(data, 1, 2, 3)

	fileType, payload, err := decodeBinaryFile(data)
	if err != nil {
		t.Fatal(err)
	}
	if fileType != "image/png" || len(payload) != 3 {
		t.Fatalf("fileType = %q, payload = %v", fileType, payload)
	}
}

func TestDecodeBinaryFileDefaultsType(t *testing.T) {
	meta := []byte(`{}`)
	data := make([]byte, 4)
	binary.BigEndian.PutUint32(data, uint32(len(meta)))
	data = append(data, meta...)

	fileType, _, err := decodeBinaryFile(data)
	if err != nil {
		t.Fatal(err)
	}
	if fileType != "application/octet-stream" {
		t.Fatalf("fileType = %q", fileType)
	}
}

func TestDecodeBinaryFileRejectsTruncatedData(t *testing.T) {
	if _, _, err := decodeBinaryFile([]byte{0, 0}); err == nil {
		t.Fatal("want error for short data")
	}
	data := make([]byte, 4)
	binary.BigEndian.PutUint32(data, 100)
	if _, _, err := decodeBinaryFile(data); err == nil {
		t.Fatal("want error for metadata size mismatch")
	}
}
