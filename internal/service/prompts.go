package service

import (
	"fmt"

	"crystalenergy-backend/internal/model"
)

const consultationSystemPrompt = "You are a professional feng shui consultant with 20+ years of experience. " +
	"Provide authentic, helpful, and detailed feng shui guidance based on traditional principles."

// Output budget per consultation tier, in completion tokens.
var consultationMaxTokens = map[string]int{
	"basic":         600,
	"detailed":      1000,
	"comprehensive": 1500,
}

func consultationPrompt(c *model.Consultation) string {
	birthTime := c.BirthTime
	if birthTime == "" {
		birthTime = "Not provided"
	}
	header := fmt.Sprintf("Birth Date: %s\nBirth Time: %s\nBirth Place: %s\nSpecific Questions: %s\n",
		c.BirthDate, birthTime, c.BirthPlace, c.Questions)

	switch c.Type {
	case "detailed":
		return "You are an expert feng shui master. Provide a detailed feng shui consultation based on:\n" + header + `
Please provide an in-depth feng shui analysis including:
1. Complete BaZi (Four Pillars) analysis
2. Personal element strength and weaknesses
3. Detailed lucky/unlucky directions and colors
4. Annual feng shui forecast
5. Home/office feng shui recommendations with specific room guidance
6. Crystal and gemstone recommendations with placement
7. Career and relationship feng shui advice
8. Specific remedies for challenges mentioned
9. Detailed answers to all questions

Make it comprehensive and actionable. 600-800 words.`

	case "comprehensive":
		return "You are a renowned feng shui grandmaster. Provide a comprehensive feng shui consultation based on:\n" + header + `
Please provide a complete feng shui life analysis including:
1. Full BaZi (Four Pillars) chart analysis with element interactions
2. Complete personal feng shui profile with strengths/weaknesses
3. Detailed lucky/unlucky directions, colors, numbers, and timing
4. Annual and monthly feng shui forecast
5. Complete home feng shui audit with room-by-room guidance
6. Office/workplace feng shui optimization
7. Comprehensive crystal and gemstone recommendations with exact placement
8. Career advancement feng shui strategies
9. Relationship and family harmony feng shui
10. Health and wealth enhancement techniques
11. Specific remedies and solutions for all challenges
12. Detailed answers to all questions with action steps
13. Monthly feng shui calendar for optimal timing

Make this a complete life guide. 1000-1200 words with specific, actionable advice.`

	default: // basic
		return "You are a professional feng shui consultant. Provide a basic feng shui consultation based on:\n" + header + `
Please provide a comprehensive feng shui reading that includes:
1. Personal feng shui element analysis
2. Lucky colors and directions
3. Recommendations for home/office arrangement
4. Crystal recommendations
5. Specific answers to their questions

Keep the response professional, insightful, and helpful. Limit to 300-400 words.`
	}
}

// fallbackConsultation is the deterministic path used when no LLM credential
// is configured or the remote call fails. It must always return content; a
// completed order is never left without a result.
func fallbackConsultation(c *model.Consultation) string {
	questions := c.Questions
	if len(questions) > 100 {
		questions = questions[:100] + "..."
	}

	switch c.Type {
	case "detailed":
		return fmt.Sprintf(`## Comprehensive Feng Shui Life Analysis

**Personal Element Profile:**
Born on %s in %s, your feng shui chart shows a unique combination of elements that influences your life path.

**BaZi Analysis Overview:**
Your four pillars reveal strong metal energy balanced with water elements, suggesting intelligence and adaptability as your core strengths.

**Lucky Directions & Colors:**
- Primary Lucky Directions: West, Northwest, North
- Power Colors: White, silver, deep blue, black
- Avoid: Excessive red or orange in main living areas
- Best Times: Morning hours (7-11 AM) for important decisions

**Home Feng Shui Master Plan:**
- Living room: position main seating facing West, place a large amethyst geode in the wealth corner
- Bedroom: headboard against a solid wall, rose quartz on the nightstand, no mirrors facing the bed
- Office: desk facing Northwest, clear quartz cluster on the desk, minimal electronics

**Crystal Recommendations:**
1. Amethyst - main entrance for protection and wisdom
2. Rose Quartz - bedroom for relationship harmony
3. Citrine - office for abundance and success
4. Black Tourmaline - near electronics for protection

**Specific Answers to Your Questions:**
"%s" - Based on feng shui principles, your concerns can be addressed through environmental adjustments and crystal placement. The key is creating balance between your personal energy and your surroundings.

**Action Plan:**
1. Week 1: Declutter and organize main living areas
2. Week 2: Add recommended crystals to key positions
3. Week 3: Adjust furniture positioning
4. Week 4: Observe and fine-tune energy flow

This detailed analysis provides a foundation for optimizing your personal feng shui. Implement changes gradually and trust your intuition about what feels right in your space.`,
			c.BirthDate, c.BirthPlace, questions)

	case "comprehensive":
		return fmt.Sprintf(`## Complete Feng Shui Life Transformation Guide

**Executive Summary:**
Born %s in %s, your complete feng shui profile reveals a complex and powerful energy pattern that, when properly harnessed, can lead to significant life improvements across all areas.

**Complete BaZi Four Pillars Analysis:**
- Year Pillar (Ancestral Energy): strong earth foundation
- Month Pillar (Career & Social): metal element prominence
- Day Pillar (Self & Marriage): water-metal combination
- Hour Pillar (Children & Legacy): balanced wood influence

**Comprehensive Lucky/Unlucky Guide:**
- Lucky Colors: White, silver, gold, deep blue, navy, brown, beige
- Lucky Numbers: 1, 4, 6, 7, 8, 9
- Lucky Directions: West, Northwest, North, Southwest
- Avoid: bright red and orange as dominant colors; South for major decisions

**Complete Home Feng Shui Blueprint:**
- Entrance: large amethyst cluster, good lighting, fresh flowers weekly
- Living room: sofa facing West with a solid wall behind, rose quartz in the relationship corner
- Kitchen: keep the stove spotless, small citrine near it for abundance
- Master bedroom: headboard West against a solid wall, soft muted colors, electronics out
- Home office: desk in the commanding position facing Northwest, clear quartz on the left

**Wealth Building Strategy:**
Activate the far left corner from your main entrance: purple cloth, citrine cluster with green aventurine, a jade plant. Make financial decisions during metal hours (3-7 PM).

**Specific Resolution to Your Questions:**
"%s"

Based on your complete feng shui profile, these concerns align with temporary imbalances in your environmental energy. Start with decluttering your primary living space this week, implement crystal placements over the next month, and monitor energy levels, sleep quality, and opportunities monthly.

This comprehensive guide provides you with a complete feng shui transformation system. Implement changes gradually, starting with the most important areas first. Your personal energy and intention are the most powerful factors in creating positive change.`,
			c.BirthDate, c.BirthPlace, questions)

	default: // basic
		if len(questions) > 50 {
			questions = questions[:50] + "..."
		}
		return fmt.Sprintf(`## Your Personal Feng Shui Consultation

**Birth Information Analysis:**
Based on your birth date (%s) and location (%s), your primary feng shui element appears to be balanced with strong earth energy.

**Lucky Elements & Colors:**
- Primary Colors: Deep purple, gold, earth tones
- Lucky Directions: Southwest, Northeast
- Best Crystal: Amethyst for wisdom and clarity

**Home Feng Shui Recommendations:**
1. Place a small amethyst cluster in your bedroom's southwest corner
2. Use warm lighting in living areas
3. Keep your workspace organized and clutter-free

**Specific Guidance:**
Regarding your questions about "%s", the feng shui principles suggest focusing on creating harmony in your personal space. Consider placing crystals strategically to enhance positive energy flow.

**Action Steps:**
- Declutter your main living areas
- Add plants to improve air quality and energy
- Use mirrors thoughtfully to expand positive spaces

This reading is based on traditional feng shui principles. For best results, implement changes gradually and observe how they affect your daily energy.`,
			c.BirthDate, c.BirthPlace, questions)
	}
}
