package neo4j

import (
	"strings"

	"github.com/honeycarbs/jobscout/internal/domain"
)

const mergeKeywordsQuery = `
	UNWIND $records AS record
	MATCH (j:Job {id: record.jobId})
	WITH j, record
	UNWIND record.keywords AS keyword
	MERGE (k:Keyword {value: keyword})
	MERGE (j)-[rel:HAS_KEYWORD]->(k)
	SET rel.createdAt = coalesce(rel.createdAt, datetime()),
	    rel.source = record.source
`

// keywordParams turns job tags into keyword records. Tags are lowercased
// and deduplicated per job; jobs without tags are left out.
func keywordParams(jobs []domain.Job) []map[string]any {
	var out []map[string]any
	for _, j := range jobs {
		seen := make(map[string]struct{}, len(j.Tags))
		keywords := make([]string, 0, len(j.Tags))
		for _, tag := range j.Tags {
			k := strings.ToLower(strings.Join(strings.Fields(tag), " "))
			if k == "" {
				continue
			}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keywords = append(keywords, k)
		}
		if len(keywords) == 0 {
			continue
		}
		out = append(out, map[string]any{
			"jobId":    j.ID.String(),
			"source":   j.Provider,
			"keywords": keywords,
		})
	}
	return out
}
