package generation

import (
	"fmt"
	"sort"

	"github.com/tmc/langchaingo/prompts"
)

// Template variables.
const (
	varContext     = "context"
	varUserMessage = "user_message"
)

// Prompts for a support-advisor assistant on a streaming platform. Answers must stay within the
// retrieved documentation.
var promptCatalogue = map[string]prompts.PromptTemplate{
	"general_query": prompts.NewPromptTemplate(`Actúas como asistente de los asesores de soporte de una plataforma de streaming.
Contesta solo con lo que diga el contexto, tomado de la documentación interna. Si el contexto no alcanza, dilo.

Contexto:
{{.context}}

Consulta del asesor:
{{.user_message}}

Respuesta según la documentación:`, []string{varContext, varUserMessage}),

	"billing_query": prompts.NewPromptTemplate(`Actúas como asistente de facturación y pagos para los asesores de soporte de una plataforma de streaming.
Contesta solo con lo que diga el contexto, tomado de la documentación interna.

Contexto:
{{.context}}

Consulta del asesor:
{{.user_message}}

Indicaciones concretas según la documentación:`, []string{varContext, varUserMessage}),

	"fraud_detection": prompts.NewPromptTemplate(`Actúas como especialista en seguridad que apoya a los asesores de soporte de una plataforma de streaming.
Ayuda a reconocer actividad sospechosa y a responder ante ella siguiendo la documentación interna.

Contexto:
{{.context}}

Caso que reporta el asesor:
{{.user_message}}

Pasos a seguir según los procedimientos internos:`, []string{varContext, varUserMessage}),

	"procedure_summary": prompts.NewPromptTemplate(`Actúas como asistente de soporte técnico. Resume el procedimiento de la documentación en pasos claros y breves.

Procedimiento:
{{.context}}

Resumen en pasos para el asesor:`, []string{varContext}),
}

// Prompt renders a named template.
type Prompt struct {
	name     string
	template prompts.PromptTemplate
}

// PromptNames lists the available template names.
func PromptNames() []string {
	names := make([]string, 0, len(promptCatalogue))
	for n := range promptCatalogue {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LookupPrompt returns the template called name.
func LookupPrompt(name string) (Prompt, error) {
	t, ok := promptCatalogue[name]
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt template %q (available: %v)", name, PromptNames())
	}
	return Prompt{name: name, template: t}, nil
}

func (p Prompt) Name() string {
	return p.name
}

// Render fills the template with the retrieved context and the user's message.
func (p Prompt) Render(context, userMessage string) (string, error) {
	out, err := p.template.Format(map[string]any{
		varContext:     context,
		varUserMessage: userMessage,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", p.name, err)
	}
	return out, nil
}
