package retrieval

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/siherrmann/vaultgraph/model"
)

var sourcesMarker = regexp.MustCompile(`SOURCES:[ \t]*\[([^\]\n]*)\]`)

// ParseAttribution splits the trailing SOURCES marker off a generated answer and
// resolves the claimed file names against the documents that were offered as context.
// Names the generator invents are ignored. Without a marker the text is returned as is.
func ParseAttribution(raw string, offered []model.ScoredDocument) model.CitedAnswer {
	answer := model.CitedAnswer{
		Text:      raw,
		Citations: []model.ScoredDocument{},
		Status:    model.AnswerStatusAnswered,
	}

	matches := sourcesMarker.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return answer
	}
	last := matches[len(matches)-1]

	answer.MarkerFound = true
	answer.ClaimedSources = parseSourceList(raw[last[2]:last[3]])
	answer.Text = strings.TrimSpace(raw[:last[0]] + raw[last[1]:])

	claimed := make(map[string]bool, len(answer.ClaimedSources))
	for _, name := range answer.ClaimedSources {
		claimed[name] = true
	}

	// Offered entries are distinct unless they repeat a non-nil RID.
	cited := make(map[uuid.UUID]bool)
	for _, doc := range offered {
		if !claimed[doc.Document.Name] {
			continue
		}
		if rid := doc.Document.RID; rid != uuid.Nil {
			if cited[rid] {
				continue
			}
			cited[rid] = true
		}
		answer.Citations = append(answer.Citations, doc)
	}

	return answer
}

func parseSourceList(list string) []string {
	var names []string
	for _, part := range strings.Split(list, ",") {
		name := strings.Trim(strings.TrimSpace(part), "'\"`")
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
