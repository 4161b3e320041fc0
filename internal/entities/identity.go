package entities

// PersonRef pins a participant to the conversation it was observed in.
// Identity mappings are scoped this way because the same display name can
// denote different people in different conversations.
type PersonRef struct {
	Name              string   `json:"name"`
	Platform          Platform `json:"platform"`
	ConversationID    string   `json:"conversationId"`
	ConversationTitle string   `json:"conversationTitle"`
}

// IdentityMapping is a user assertion that Person1 in one conversation and
// Person2 in another denote the same real person. Mappings with a missing
// side are ignored during merge, not rejected.
type IdentityMapping struct {
	Person1 *PersonRef `json:"person1"`
	Person2 *PersonRef `json:"person2"`
}

// Complete reports whether both sides of the mapping are present.
func (m IdentityMapping) Complete() bool {
	return m.Person1 != nil && m.Person2 != nil
}

// CanonicalIdentity is the resolved person record one identity mapping
// produces. Built fresh from the mapping list at merge time; never stored.
//
// Mappings are deliberately not transitively composed: A<->B and B<->C
// yield two distinct canonical identities unless A<->C is declared too.
type CanonicalIdentity struct {
	CanonicalID    string     `json:"canonicalId"`
	CanonicalName  string     `json:"canonicalName"`
	AlternateNames []string   `json:"alternateNames"`
	Platforms      []Platform `json:"platforms"`
}
