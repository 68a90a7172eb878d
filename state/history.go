package state

import "time"

// History is one saved conversation.
type History struct {
	ID           string                `json:"id"`
	Title        *string               `json:"title"`
	PersonaName  *string               `json:"persona_name"`
	ModelName    string                `json:"model_name"`
	Conversation []ConversationMessage `json:"conversation"`
	CreatedAt    time.Time             `json:"created_at"`
}

// Clone returns a deep copy of the history entry.
func (h History) Clone() History {
	out := h
	if h.Title != nil {
		t := *h.Title
		out.Title = &t
	}
	if h.PersonaName != nil {
		n := *h.PersonaName
		out.PersonaName = &n
	}
	out.Conversation = CloneConversation(h.Conversation)
	return out
}

// PersonaHistory remembers the persona last used for a conversation.
type PersonaHistory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HistoryContext holds saved conversations. CurrentHistoryID tracks which
// entry the live conversation belongs to; it is volatile across restarts.
type HistoryContext struct {
	History          []History       `json:"history"`
	LastPersona      *PersonaHistory `json:"last_persona"`
	CurrentHistoryID *string         `json:"current_history_id"`
}

func (c HistoryContext) clone() HistoryContext {
	out := HistoryContext{History: make([]History, len(c.History))}
	for i, h := range c.History {
		out.History[i] = h.Clone()
	}
	if c.LastPersona != nil {
		p := *c.LastPersona
		out.LastPersona = &p
	}
	if c.CurrentHistoryID != nil {
		id := *c.CurrentHistoryID
		out.CurrentHistoryID = &id
	}
	return out
}
