package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mkarpov/rapport/internal/entities"
	"github.com/mkarpov/rapport/internal/logger"
)

// MergeService resolves user-declared identity mappings into canonical
// identities, groups conversations that share one, and folds each group
// into a single conversation. With no usable mappings it is the identity
// function on its input.
//
// Mappings are looked up literally, pair by pair: declaring A<->B and
// B<->C produces two canonical identities, not one spanning all three.
// Closing mappings transitively would be a behavior change.
type MergeService struct{}

func NewMergeService() *MergeService {
	return &MergeService{}
}

// identityKey scopes a participant name to the conversation it appears in.
func identityKey(name, conversationID string) string {
	return name + "::" + conversationID
}

// Merge produces a new conversation list; the input conversations and
// their messages are never mutated. Sender rewrites happen on copies,
// carrying the pre-rewrite value in OriginalSender.
func (s *MergeService) Merge(conversations []entities.Conversation, mappings []entities.IdentityMapping) []entities.Conversation {
	identities := buildIdentityIndex(mappings)
	if len(identities) == 0 {
		return conversations
	}

	// Group conversations by the canonical identity of their first
	// mapped participant; unmapped conversations group alone under
	// their own id.
	groupOrder := []string{}
	groups := make(map[string][]entities.Conversation)
	for _, conv := range conversations {
		key := conv.ConversationID
		for _, p := range conv.Participants {
			if ident, ok := identities[identityKey(p.Name, conv.ConversationID)]; ok {
				key = ident.CanonicalID
				break
			}
		}
		if _, exists := groups[key]; !exists {
			groupOrder = append(groupOrder, key)
		}
		groups[key] = append(groups[key], conv)
	}

	merged := make([]entities.Conversation, 0, len(groups))
	for _, key := range groupOrder {
		members := groups[key]
		if len(members) == 1 {
			merged = append(merged, members[0])
			continue
		}
		merged = append(merged, mergeGroup(key, members, identities))
	}

	logger.WithFields(map[string]interface{}{
		"input":    len(conversations),
		"mappings": len(mappings),
		"output":   len(merged),
	}).Info("merged conversations")

	return merged
}

// buildIdentityIndex turns the ordered mapping list into a lookup keyed by
// (participant name, conversation id) for both sides of every complete
// mapping. Incomplete mappings are skipped entirely.
func buildIdentityIndex(mappings []entities.IdentityMapping) map[string]*entities.CanonicalIdentity {
	index := make(map[string]*entities.CanonicalIdentity)
	for i, m := range mappings {
		if !m.Complete() {
			continue
		}
		ident := &entities.CanonicalIdentity{
			CanonicalID:    fmt.Sprintf("merged-%d", i),
			CanonicalName:  m.Person1.Name,
			AlternateNames: []string{m.Person1.Name, m.Person2.Name},
			Platforms:      []entities.Platform{m.Person1.Platform, m.Person2.Platform},
		}
		index[identityKey(m.Person1.Name, m.Person1.ConversationID)] = ident
		index[identityKey(m.Person2.Name, m.Person2.ConversationID)] = ident
	}
	return index
}

func mergeGroup(groupID string, members []entities.Conversation, identities map[string]*entities.CanonicalIdentity) entities.Conversation {
	// Oldest conversation first; messages are fully re-sorted afterwards
	// because sources interleave in time.
	sorted := make([]entities.Conversation, len(members))
	copy(sorted, members)
	sort.SliceStable(sorted, func(i, j int) bool {
		return rangeStart(sorted[i].DateRange).Before(rangeStart(sorted[j].DateRange))
	})

	var messages []entities.Message
	for _, member := range sorted {
		for _, msg := range member.Messages {
			out := msg
			if ident, ok := identities[identityKey(msg.Sender, member.ConversationID)]; ok {
				out.OriginalSender = msg.Sender
				out.Sender = ident.CanonicalName
			}
			messages = append(messages, out)
		}
	}
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp < messages[j].Timestamp
	})

	participants := canonicalParticipants(sorted, identities)

	sources := []string{}
	seenSource := make(map[string]bool)
	for _, member := range sorted {
		if !seenSource[member.Source] {
			seenSource[member.Source] = true
			sources = append(sources, member.Source)
		}
	}
	source := entities.SourceMerged
	if len(sources) == 1 {
		source = sources[0]
	}

	names := make([]string, 0, len(participants))
	for _, p := range participants {
		names = append(names, p.Name)
	}
	title := fmt.Sprintf("%s (%s)", strings.Join(names, " & "), strings.Join(sources, ", "))

	provenance := make([]entities.SourceConversation, 0, len(sorted))
	for _, member := range sorted {
		provenance = append(provenance, entities.SourceConversation{
			Title:        member.Title,
			Source:       member.Source,
			MessageCount: member.TotalMessages,
			DateRange:    member.DateRange,
		})
	}

	return entities.Conversation{
		Source:              source,
		ConversationID:      groupID,
		Title:               title,
		Participants:        participants,
		Messages:            messages,
		DateRange:           entities.NewDateRange(messages),
		TotalMessages:       len(messages),
		IsMerged:            true,
		SourceConversations: provenance,
	}
}

// canonicalParticipants maps every member participant through the identity
// index and de-duplicates by canonical name, aggregating alternate names
// and platforms. A participant spanning several platforms is tagged with
// the "multiple" platform.
func canonicalParticipants(members []entities.Conversation, identities map[string]*entities.CanonicalIdentity) []entities.Participant {
	order := []string{}
	byName := make(map[string]*entities.Participant)
	platformSets := make(map[string]map[entities.Platform]bool)

	add := func(name string, alternates []string, platforms []entities.Platform, raw string) {
		p, exists := byName[name]
		if !exists {
			byName[name] = &entities.Participant{Name: name, RawIdentifier: raw}
			platformSets[name] = make(map[entities.Platform]bool)
			order = append(order, name)
			p = byName[name]
		}
		for _, alt := range alternates {
			if alt != name && !contains(p.AlternateNames, alt) {
				p.AlternateNames = append(p.AlternateNames, alt)
			}
		}
		for _, pl := range platforms {
			platformSets[name][pl] = true
		}
	}

	for _, member := range members {
		for _, participant := range member.Participants {
			if ident, ok := identities[identityKey(participant.Name, member.ConversationID)]; ok {
				add(ident.CanonicalName, ident.AlternateNames, ident.Platforms, participant.RawIdentifier)
			} else {
				add(participant.Name, participant.AlternateNames, []entities.Platform{participant.Platform}, participant.RawIdentifier)
			}
		}
	}

	result := make([]entities.Participant, 0, len(order))
	for _, name := range order {
		p := byName[name]
		set := platformSets[name]
		if len(set) == 1 {
			for pl := range set {
				p.Platform = pl
			}
		} else {
			p.Platform = entities.PlatformMultiple
		}
		result = append(result, *p)
	}
	return result
}

func rangeStart(r *entities.DateRange) time.Time {
	if r == nil {
		return time.Time{}
	}
	return r.Start
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
