package matrix

import (
	"tmx/internal/model"
)

// composeTransitive derives code→software-requirement links by walking the
// feature→user-requirement→software-requirement chains already built. One
// link is emitted per reachable (evidence, user requirement, software
// requirement) triple; the same software requirement reached through two
// user requirements yields two links. Confidence is the feature's own
// confidence times TransitiveDiscount, a fixed per-indirection discount
// rather than a re-derivation from the intermediate hop confidences.
func (b *Builder) composeTransitive(features []model.Feature, featureLinks, derivationLinks []model.TraceLink) []model.TraceLink {
	featureToUser := make(map[string][]string)
	for _, l := range featureLinks {
		featureToUser[l.SourceID] = append(featureToUser[l.SourceID], l.TargetID)
	}
	userToSoftware := make(map[string][]string)
	for _, l := range derivationLinks {
		userToSoftware[l.SourceID] = append(userToSoftware[l.SourceID], l.TargetID)
	}

	var links []model.TraceLink
	seen := make(map[string]bool)
	for _, f := range features {
		if len(f.Evidence) == 0 {
			continue
		}
		confidence := f.Confidence * b.cfg.TransitiveDiscount

		for _, userReqID := range featureToUser[f.ID] {
			for _, softReqID := range userToSoftware[userReqID] {
				for _, ev := range f.Evidence {
					triple := ev.Key() + "\x00" + userReqID + "\x00" + softReqID
					if seen[triple] {
						continue
					}
					seen[triple] = true
					links = append(links, model.TraceLink{
						ID:         b.newID(),
						SourceKind: model.KindCode,
						SourceID:   ev.Key(),
						TargetKind: model.KindRequirement,
						TargetID:   softReqID,
						Kind:       model.LinkImplements,
						Confidence: confidence,
						Detail: model.CodeToRequirement{
							FilePath:          ev.FilePath,
							StartLine:         ev.StartLine,
							EndLine:           ev.EndLine,
							FeatureID:         f.ID,
							UserRequirementID: userReqID,
							RequirementID:     softReqID,
						},
					})
				}
			}
		}
	}
	return links
}
