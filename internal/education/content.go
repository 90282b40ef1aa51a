// Package education ships the built-in learning content: short markdown
// cards on technique, the physiology behind breath holds, and safety.
package education

// Card is one self-contained learning article. Body is markdown,
// rendered for the terminal at display time.
type Card struct {
	Slug    string
	Title   string
	Summary string
	Body    string
}

// Cards returns the built-in articles in display order.
func Cards() []Card {
	return builtinCards
}

// BySlug returns the card with the given slug, or false.
func BySlug(slug string) (Card, bool) {
	for _, c := range builtinCards {
		if c.Slug == slug {
			return c, true
		}
	}
	return Card{}, false
}

var builtinCards = []Card{
	{
		Slug:    "box-breathing",
		Title:   "Box Breathing",
		Summary: "The 4-4-4-4 preparation technique and why it works.",
		Body: `# Box Breathing

Box breathing is a paced technique with four equal sides: inhale, hold
with full lungs, exhale, hold with empty lungs. The shipped protocol
uses four seconds per side for four rounds.

## Why equal sides

Slow, even pacing activates the parasympathetic nervous system and
lowers heart rate before the hold. The empty-lung hold in particular
builds comfort with the sensations you'll meet later in the breath hold.

## During a session

- Breathe through the nose if you can.
- Keep the shoulders relaxed; let the belly do the work.
- If four seconds feels strained, the point is lost. Finish the session
  and consider a gentler protocol rather than forcing the count.
`,
	},
	{
		Slug:    "co2-tolerance",
		Title:   "CO2 Tolerance",
		Summary: "What actually triggers the urge to breathe.",
		Body: `# CO2 Tolerance

The urge to breathe during a hold is driven almost entirely by rising
carbon dioxide, not by falling oxygen. A trained breath-holder is mostly
someone whose brain has learned that rising CO2 is uncomfortable but
not dangerous.

## What training changes

Regular practice shifts the point where discomfort starts and widens the
gap between "I want to breathe" and "I need to breathe". The contractions
of the diaphragm near the end of a hold are a normal CO2 response, not a
sign of harm.

## What it does not change

Oxygen stores barely change with this kind of practice. Longer holds come
from tolerance and calm, not from bigger lungs. That is also why the
milestones in this app reward consistency over single heroic attempts.
`,
	},
	{
		Slug:    "safety",
		Title:   "Safety",
		Summary: "The non-negotiable rules for breath-hold practice.",
		Body: `# Safety

Breath-hold training is safe when you respect a few hard rules.

## Never in water

Never practice breath holds in or near water, including the bath. A
shallow-water blackout gives no warning and is fatal without a rescuer.

## Always seated or lying down

Practice seated or lying down so that a rare blackout ends with a bruise
at worst. Never while standing, driving, or operating anything.

## Listen to the stop signals

Use the emergency stop the moment you feel faint, see tunnel vision, or
feel tingling in the face or hands. A shorter session is a data point;
pushing through those signs is how accidents happen.

## Who should not practice

Skip unassisted training if you are pregnant or have a heart condition,
epilepsy, or uncontrolled blood pressure. Talk to a doctor first.
`,
	},
	{
		Slug:    "progression",
		Title:   "Progressing",
		Summary: "How to build longer holds without forcing them.",
		Body: `# Progressing

Hold duration follows consistency, not effort. A daily relaxed session
beats a weekly maximal one.

## Use the streak, not the record

The streak counter exists because the adaptation that lengthens holds
comes from frequent exposure. Chasing the personal best on every session
trains tension, which is the opposite of what a long hold needs.

## When to extend the protocol

When the final rounds of preparation feel effortless, add a round or a
second per side rather than pushing the hold itself. The hold takes care
of itself once the preparation is calm.
`,
	},
}
