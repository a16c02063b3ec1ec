package usecase

import (
	"sort"

	"github.com/jwpark-dev/lawsearch/internal/core/domain"
)

// defaultHierarchyWeights encodes legal-document authority: a statute's
// treatment of a topic outranks an implementing rule's even when the
// rule's text is the closer embedding match.
var defaultHierarchyWeights = map[domain.DocType]float64{
	domain.DocTypeStatute:     3.0,
	domain.DocTypeDecree:      2.0,
	domain.DocTypeAdminNotice: 1.5,
	domain.DocTypeRule:        1.0,
	domain.DocTypeGlossary:    0.5,
}

const defaultAuthorityWeight = 1.0

// HierarchyRanker re-orders vector candidates by document-type authority.
// Score is weight/(1+distance); this deliberately differs from the
// 1-distance convention of hybrid search, which downstream consumers were
// tuned against separately.
type HierarchyRanker struct {
	weights map[domain.DocType]float64
}

func NewHierarchyRanker(weights map[domain.DocType]float64) *HierarchyRanker {
	if len(weights) == 0 {
		weights = defaultHierarchyWeights
	}
	return &HierarchyRanker{weights: weights}
}

func (r *HierarchyRanker) weight(docType domain.DocType) float64 {
	if w, ok := r.weights[docType]; ok {
		return w
	}
	return defaultAuthorityWeight
}

// Rank scores every candidate, sorts descending and truncates to topN
// (topN <= 0 keeps all). A marginally relevant statute provision may
// legitimately displace a highly relevant rule provision.
func (r *HierarchyRanker) Rank(hits []domain.ChunkHit, topN int) []domain.RankedProvision {
	if len(hits) == 0 {
		return nil
	}

	ranked := make([]domain.RankedProvision, 0, len(hits))
	for _, hit := range hits {
		w := r.weight(hit.Meta.DocType)
		ranked = append(ranked, domain.RankedProvision{
			Hit:    hit,
			Weight: w,
			Score:  w / (1 + hit.Distance),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].Hit.Meta.LawTitle != ranked[j].Hit.Meta.LawTitle {
			return ranked[i].Hit.Meta.LawTitle < ranked[j].Hit.Meta.LawTitle
		}
		return ranked[i].Hit.Meta.ArticleNo < ranked[j].Hit.Meta.ArticleNo
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
