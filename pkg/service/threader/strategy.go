package threader

import (
	"github.com/inboxpulse/inboxpulse/pkg/domain/model"
	"github.com/inboxpulse/inboxpulse/pkg/domain/types"
)

// Strategy resolves the thread a message belongs to, or reports that it
// cannot. Strategies are pure lookups against the reconstruction index and
// are tried in a fixed order; reordering or adding one is a local change.
type Strategy func(msg *model.Message, idx *index) (types.ThreadID, bool)

// defaultStrategies is the resolution chain of the reconstructor, strongest
// signal first.
func defaultStrategies(guardSubjectMatch bool) []Strategy {
	return []Strategy{
		byInReplyTo,
		byReferences,
		byProviderHint,
		byNormalizedSubject(guardSubjectMatch),
	}
}

// byInReplyTo follows the In-Reply-To header to the thread of the referenced
// message.
func byInReplyTo(msg *model.Message, idx *index) (types.ThreadID, bool) {
	if msg.InReplyTo == "" {
		return "", false
	}
	id, ok := idx.threadOfMessage[msg.InReplyTo]
	return id, ok
}

// byReferences walks the References list from the most recent identifier
// backwards and resolves to the first one already assigned to a thread.
func byReferences(msg *model.Message, idx *index) (types.ThreadID, bool) {
	for i := len(msg.References) - 1; i >= 0; i-- {
		if id, ok := idx.threadOfMessage[msg.References[i]]; ok {
			return id, true
		}
	}
	return "", false
}

// byProviderHint uses the provider-supplied thread identifier, provided some
// message with that hint already has a thread.
func byProviderHint(msg *model.Message, idx *index) (types.ThreadID, bool) {
	if msg.ThreadIDHint == "" {
		return "", false
	}
	id, ok := idx.threadOfHint[msg.ThreadIDHint]
	return id, ok
}

// byNormalizedSubject matches against existing threads by normalized subject.
// With the guard enabled the candidate thread must share at least one
// participant with the message, so two unrelated "status update" threads do
// not collapse into one.
func byNormalizedSubject(guard bool) Strategy {
	return func(msg *model.Message, idx *index) (types.ThreadID, bool) {
		key := NormalizeSubject(msg.Subject)
		if key == "" {
			return "", false
		}

		candidates, ok := idx.threadsOfSubject[key]
		if !ok {
			return "", false
		}

		if !guard {
			return candidates[0], true
		}

		for _, id := range candidates {
			for _, p := range msg.Participants() {
				if _, shared := idx.participants[id][p]; shared {
					return id, true
				}
			}
		}
		return "", false
	}
}
