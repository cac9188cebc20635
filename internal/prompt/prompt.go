// Package prompt builds the system/user prompt pairs sent to the model
// backend. Construction is deterministic: the same inputs always produce the
// same pair.
package prompt

import (
	"fmt"
	"strings"
)

// Pair couples the system instructions with the user prompt for one request.
type Pair struct {
	System string
	User   string
}

const generationSystem = `Tu es un expert en rédaction d'offres commerciales et de réponses aux appels d'offres.
Ta tâche est de générer une offre de prix professionnelle et complète en français.

Règles à suivre:
1. Analyser attentivement l'appel d'offre pour identifier les exigences, critères et données clés
2. Utiliser la structure et le style des modèles de rédaction fournis
3. Adapter le contenu aux spécificités de l'appel d'offre
4. Inclure toutes les sections nécessaires (présentation, méthodologie, planning, budget, etc.)
5. Utiliser un ton professionnel et convaincant
6. Structurer clairement avec des titres et sous-titres (utiliser le format Markdown)

Format de sortie:
- Utiliser des titres avec # pour les sections principales
- Utiliser des listes à puces pour les énumérations
- Être précis et concis tout en étant complet
`

const analysisSystem = `Tu es un expert en analyse d'appels d'offres.
Analyse le document fourni et extrais les informations clés de manière structurée.`

// ForGeneration builds the quote-writing prompt pair. Template and context
// sections are omitted entirely when there is nothing to embed; the prompt
// never contains an empty section marker.
func ForGeneration(tenderText string, templateTexts []string, additionalContext string) Pair {
	var templates strings.Builder
	if len(templateTexts) > 0 {
		templates.WriteString("\n\n---\nMODÈLES DE RÉDACTION DE RÉFÉRENCE:\n\n")
		for i, t := range templateTexts {
			fmt.Fprintf(&templates, "=== Modèle %d ===\n%s\n\n", i+1, t)
		}
	}

	var context string
	if additionalContext != "" {
		context = fmt.Sprintf("CONTEXTE SUPPLÉMENTAIRE: %s", additionalContext)
	}

	user := fmt.Sprintf(`APPEL D'OFFRE À ANALYSER:

%s

%s

%s

Génère maintenant une offre de prix complète et professionnelle en réponse à cet appel d'offre.
L'offre doit être structurée, détaillée et adaptée aux exigences spécifiques mentionnées.`,
		tenderText, templates.String(), context)

	return Pair{System: generationSystem, User: user}
}

// ForAnalysis builds the tender-analysis prompt pair.
func ForAnalysis(tenderText string) Pair {
	user := fmt.Sprintf(`Analyse l'appel d'offre suivant et extrais:
1. Référence du marché
2. Objet/Titre
3. Date limite de réponse
4. Budget estimé (si mentionné)
5. Critères de sélection principaux
6. Exigences techniques clés
7. Documents à fournir
8. Points d'attention particuliers

DOCUMENT:

%s

Fournis une analyse structurée et concise.`, tenderText)

	return Pair{System: analysisSystem, User: user}
}
