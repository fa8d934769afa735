package ai

import (
	"encoding/json"
	"fmt"
	"mindpath/therapy-app/internal/domain"
	"strings"
)

// candidateApproaches is the set the model chooses from for a new plan.
var candidateApproaches = []string{
	"Cognitive Behavioral Therapy",
	"Acceptance and Commitment Therapy",
	"Mindfulness-Based Therapy",
	"Solution-Focused Brief Therapy",
}

const planSchemaBlock = "```json\n" + `{
  "recommendedApproach": "string",
  "summary": "string",
  "weeklyPlan": [
    {
      "weekNumber": 1,
      "theme": "string",
      "goal": "string",
      "articles": ["string"],
      "exercises": [{ "title": "string", "steps": ["string"] }],
      "videos": ["string"]
    }
  ]
}` + "\n```"

const moodSchemaBlock = "```json\n" + `{
  "moodScore": 3,
  "description": "string"
}` + "\n```"

const replyFormatRule = `Your reply MUST be a single markdown code block tagged json containing an object with exactly this layout. Do not write anything outside the code block.`

// BuildInitialPlanPrompt builds the instruction for a user's first plan.
func BuildInitialPlanPrompt(profile *domain.Profile, onboarding *domain.Onboarding) string {
	var b strings.Builder

	b.WriteString("You are an expert psychologist who designs personalised therapy plans.\n")
	b.WriteString("Using the information below from a user who has just finished onboarding, create an initial therapy plan.\n\n")

	b.WriteString("USER INFORMATION:\n")
	fmt.Fprintf(&b, "- Age: %d\n", profile.Age)
	fmt.Fprintf(&b, "- Gender: %s\n", valueOr(string(profile.Gender), "not stated"))
	fmt.Fprintf(&b, "- Country: %s\n", profile.Country)
	fmt.Fprintf(&b, "- Primary concerns: %s\n", joinConcerns(onboarding.PrimaryConcerns))
	fmt.Fprintf(&b, "- Recent anxiety level (0-3, 3 is highest): %d\n", onboarding.Wellbeing.Anxious)
	fmt.Fprintf(&b, "- Recent sadness or hopelessness level (0-3, 3 is highest): %d\n", onboarding.Wellbeing.Hopeless)
	fmt.Fprintf(&b, "- Content preferences: %s\n\n", valueOr(strings.Join(onboarding.ContentPreferences, ", "), "none stated"))

	b.WriteString("TASK:\n")
	fmt.Fprintf(&b, "1. Consider at least two of these therapeutic approaches: %s.\n", strings.Join(candidateApproaches, ", "))
	b.WriteString("2. Choose the single approach that best fits this user.\n")
	fmt.Fprintf(&b, "3. Choose a plan length between %d and %d weeks based on how complex the concerns are. More complex cases need more weeks.\n", domain.MinPlanWeeks, domain.MaxPlanWeeks)
	b.WriteString("4. For every week give a theme, a clear goal, at least one article, one practical exercise with a title and detailed steps, and one video.\n")
	b.WriteString("5. Number the weeks from 1 with no gaps. In the summary, justify the chosen approach over the alternatives for this specific user.\n")
	b.WriteString("Be specific to the user's information and avoid generic plans.\n\n")

	b.WriteString(replyFormatRule)
	b.WriteString("\n\n")
	b.WriteString(planSchemaBlock)
	b.WriteString("\n")
	return b.String()
}

// BuildAdaptationPrompt builds the instruction to revise an existing plan.
// History is never sent; the model sees only the active content.
func BuildAdaptationPrompt(plan *domain.TherapyPlan, profile *domain.Profile, onboarding *domain.Onboarding, moods []domain.MoodObservation) string {
	var b strings.Builder

	b.WriteString("You are an expert psychologist reviewing a patient's progress to adapt their therapy plan.\n\n")

	b.WriteString("PATIENT DATA:\n")
	fmt.Fprintf(&b, "- Age: %d, Gender: %s, Country: %s\n", profile.Age, valueOr(string(profile.Gender), "not stated"), profile.Country)
	fmt.Fprintf(&b, "- Primary concerns: %s\n", joinConcerns(onboarding.PrimaryConcerns))
	fmt.Fprintf(&b, "- Intake anxiety %d/3, intake sadness %d/3\n", onboarding.Wellbeing.Anxious, onboarding.Wellbeing.Hopeless)
	fmt.Fprintf(&b, "- Desired frequency: %s\n", valueOr(string(onboarding.DesiredFrequency), "not stated"))
	fmt.Fprintf(&b, "- Content preferences: %s\n\n", valueOr(strings.Join(onboarding.ContentPreferences, ", "), "none stated"))

	b.WriteString("CURRENT THERAPY PLAN:\n")
	current, _ := json.MarshalIndent(plan.PlanContent, "", "  ")
	b.Write(current)
	b.WriteString("\n\n")

	b.WriteString("PROGRESS AND RECENT STATE:\n")
	b.WriteString("- ")
	b.WriteString(ProgressSummary(plan.CompletedWeeks()))
	b.WriteString("\n")
	b.WriteString(MoodWindowSummary(moods))
	b.WriteString("\n")

	b.WriteString("TASK:\n")
	fmt.Fprintf(&b, "Using ALL of the information above, review and adapt the plan. Keep or change its length, staying between %d and %d weeks in total.\n", domain.MinPlanWeeks, domain.MaxPlanWeeks)
	b.WriteString("- Every week must keep relevant supporting content: articles, videos and exercises with a title and detailed steps.\n")
	b.WriteString("- If progress is good and mood is consistently positive, propose slightly more advanced activities or shorten the plan if its main goals are being met.\n")
	b.WriteString("- If progress is slow or mood is low or volatile, reinforce foundational concepts or introduce coping techniques in the coming weeks.\n")
	b.WriteString("- If the plan is already suitable you may keep it, but say why in the summary.\n")
	b.WriteString("- Add a \"rationale\" field ONLY to weeks you change, explaining the change from the data above.\n")
	b.WriteString("- Return the COMPLETE plan, weeks numbered from 1 with no gaps. Do not include completion status or history.\n\n")

	b.WriteString(replyFormatRule)
	b.WriteString("\n\n")
	b.WriteString(planSchemaBlock)
	b.WriteString("\n")
	return b.String()
}

// ProgressSummary lists the completed weeks.
func ProgressSummary(completedWeeks []int) string {
	if len(completedWeeks) == 0 {
		return "Current progress: no weeks completed yet."
	}
	done := make([]string, len(completedWeeks))
	for i, n := range completedWeeks {
		done[i] = fmt.Sprintf("Week %d completed", n)
	}
	return "Current progress: " + strings.Join(done, ", ") + "."
}

// MoodWindowSummary renders the mood window oldest-first with its trend.
// moods is expected newest first, as the store returns it.
func MoodWindowSummary(moods []domain.MoodObservation) string {
	if len(moods) == 0 {
		return "- No recent mood history.\n"
	}
	s := domain.SummarizeMoods(moods)

	var b strings.Builder
	fmt.Fprintf(&b, "- Recent mood history (1-5 scale), overall trend: %s (average %.2f, range %d-%d over %d entries):\n",
		s.Trend, s.Average, s.Min, s.Max, s.Count)
	for i := len(moods) - 1; i >= 0; i-- {
		m := moods[i]
		fmt.Fprintf(&b, "  - Date: %s, Mood: %d/5", m.Date.Format("2006-01-02"), m.Score)
		if m.Note != "" {
			fmt.Fprintf(&b, ", User note: %q", m.Note)
		}
		if m.VoiceAnalysis != "" {
			fmt.Fprintf(&b, ", Voice analysis: %q", m.VoiceAnalysis)
		}
		if m.FaceAnalysis != "" {
			fmt.Fprintf(&b, ", Face analysis: %q", m.FaceAnalysis)
		}
		b.WriteString("\n")
	}
	return b.String()
}

const voicePrompt = `Analyse the attached audio clip. Based only on the tone, pace, inflection and energy of the voice, infer the speaker's mood.
Do NOT make any clinical diagnosis (for example "depression"); describe only what is audible.
` + replyFormatRule + `

` + moodSchemaBlock + `

"moodScore" must be an integer from 1 to 5 (1 = very bad, 2 = bad, 3 = neutral, 4 = good, 5 = very good).
"description" must be a short summary of your vocal analysis that justifies the score.
`

const facePrompt = `Analyse the attached photo of a person's face. Describe the visible facial indicators (eyes, mouth, eyebrows) and infer a possible momentary mood from them.
Do NOT make any clinical diagnosis (for example "depression"); base the analysis only on the visible expression.
` + replyFormatRule + `

` + moodSchemaBlock + `

"moodScore" must be an integer from 1 to 5 (1 = very bad, 2 = bad, 3 = neutral, 4 = good, 5 = very good).
"description" must be a short summary of the facial indicators that justifies the score.
`

func joinConcerns(concerns []domain.Concern) string {
	parts := make([]string, len(concerns))
	for i, c := range concerns {
		parts[i] = string(c)
	}
	return valueOr(strings.Join(parts, ", "), "none stated")
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
