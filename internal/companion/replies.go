package companion

import (
	"hash/fnv"

	"github.com/ritmolabs/ritmo/internal/schema"
)

// fallbackReplies is the canned phrasing bank used when the completion
// endpoint is unavailable. Picks are deterministic per message so retries
// don't flap between phrasings.
var fallbackReplies = map[schema.Strategy][]string{
	schema.StrategyEmpathetic: {
		"Te escucho. Lo que sientes es importante, ¿quieres contarme un poco más?",
		"Siento que hoy está siendo difícil. Estoy aquí contigo.",
		"Gracias por contármelo. No tienes que pasar por esto en silencio.",
	},
	schema.StrategyEncouraging: {
		"¡Me alegra leerte! Sigue así, paso a paso.",
		"Qué bien suena eso. ¿Qué te gustaría hacer hoy?",
		"Vas por buen camino. Celebro ese avance contigo.",
	},
	schema.StrategyNeutral: {
		"Aquí estoy. Cuéntame cómo va tu día.",
		"Te leo. ¿Cómo te encuentras ahora mismo?",
		"Gracias por escribir. ¿Qué tal ha ido la mañana?",
	},
	schema.StrategyHabits: {
		"¿Qué te parece si repasamos tu rutina de hoy? Un paseo corto puede sentar bien.",
		"Es buen momento para una pausa: un vaso de agua y estirar un poco.",
	},
	schema.StrategyProactive: {
		"Me gustaría conocerte mejor: ¿qué es lo que más te ha animado esta semana?",
		"¿Te apetece que hablemos de algo distinto? Cuéntame algo que te guste hacer.",
	},
	schema.StrategyUrgent: {
		"Estoy contigo ahora mismo. No estás solo; si necesitas ayuda inmediata, llama al 024 (línea de atención, 24h).",
		"Gracias por decírmelo. Esto es importante: hay personas que pueden ayudarte ahora, como la línea 024. Yo sigo aquí contigo.",
	},
}

// fallbackReply picks a canned reply for the strategy, keyed by the user's
// message text.
func fallbackReply(strategy schema.Strategy, message string) string {
	bank, ok := fallbackReplies[strategy]
	if !ok || len(bank) == 0 {
		bank = fallbackReplies[schema.StrategyNeutral]
	}
	h := fnv.New32a()
	h.Write([]byte(message))
	return bank[int(h.Sum32())%len(bank)]
}

// systemPrompts condition the model on the orchestrated strategy.
var systemPrompts = map[schema.Strategy]string{
	schema.StrategyEmpathetic: "Respond with warmth and validation. Acknowledge the feeling before " +
		"anything else, ask one gentle open question, and never minimize.",
	schema.StrategyEncouraging: "Celebrate the positive note and reinforce it. Suggest one small, " +
		"concrete next step that builds on it.",
	schema.StrategyNeutral: "Keep a calm, companionable tone. Short sentences, no pressure, " +
		"one light question at most.",
	schema.StrategyHabits: "Gently steer toward daily routine: meals, a short walk, rest. " +
		"One suggestion at a time.",
	schema.StrategyProactive: "The conversation has gone flat. Take initiative: bring up something " +
		"new and personal to re-engage, referencing earlier context when available.",
	schema.StrategyUrgent: "The user may be in crisis. Stay present and calm, take them seriously, " +
		"and point to immediate help (in Spain, the 024 line) without lecturing. Keep it short.",
}

const baseSystemPrompt = "You are RITMO, a daily companion for people going through vulnerable " +
	"moments. Always answer in the user's language (usually Spanish), in 2-4 short sentences. " +
	"You are not a therapist and never diagnose. "

func systemPrompt(strategy schema.Strategy, contextBlock string) string {
	p, ok := systemPrompts[strategy]
	if !ok {
		p = systemPrompts[schema.StrategyNeutral]
	}
	prompt := baseSystemPrompt + p
	if contextBlock != "" {
		prompt += "\n\n" + contextBlock
	}
	return prompt
}
