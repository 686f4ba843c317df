package advisor

import (
	"context"
	"strings"

	"spendwise/internal/ports"
)

const (
	SourceGemini   = "gemini"
	SourceFallback = "fallback"
)

// Canned replies, matched on keywords in this order.
var cannedReplies = []struct {
	keywords []string
	reply    string
}{
	{[]string{"budget"}, "💰 Creating a budget is essential! Start with the 50/30/20 rule: 50% for needs, 30% for wants, and 20% for savings. Track your income and expenses for a month to see where your money goes. The expense tracker can help you categorize spending! What's your biggest spending category?"},
	{[]string{"invest"}, "📊 Great question! For beginners, consider starting with:\n• Index funds or ETFs (diversified, lower risk)\n• Dollar-cost averaging strategy\n• Emergency fund first (3-6 months expenses)\n• Only invest money you won't need for 5+ years\n\n⚠️ Always do your research and consider consulting a financial advisor. What's your investment timeline?"},
	{[]string{"expense", "track"}, "📈 Smart expense tracking tips:\n• Categorize everything (housing, food, transport, entertainment)\n• Review spending weekly\n• Use the built-in tracker for insights\n• Look for patterns and surprises\n• Set spending limits per category\n\nSmall daily expenses often add up more than you think! What category surprises you most?"},
	{[]string{"save", "saving"}, "✅ Proven saving strategies:\n• Pay yourself first - save before spending\n• Automate transfers to savings\n• Use the envelope method for discretionary spending\n• Find cheaper alternatives for recurring expenses\n• Set specific, measurable goals\n\n💡 Even $5/day = $1,825/year! What's your savings goal?"},
	{[]string{"debt", "loan"}, "🎯 Debt management strategies:\n• List all debts (amount, interest rate, minimum payment)\n• Consider debt avalanche (highest interest first) or snowball (smallest first)\n• Negotiate with creditors if struggling\n• Avoid taking on new debt\n• Build emergency fund while paying debt\n\nEvery extra payment helps! What type of debt are you tackling?"},
	{[]string{"credit"}, "📊 Credit improvement tips:\n• Pay all bills on time (35% of score)\n• Keep credit utilization below 30% (ideally under 10%)\n• Don't close old credit cards\n• Monitor your credit report regularly\n• Be patient - improvements take time\n\nGood credit opens many financial doors! What's your current credit goal?"},
}

const defaultReply = "💡 I'm here to help with all your finance questions! I can assist with:\n• Budgeting and expense tracking\n• Investment basics\n• Saving strategies\n• Debt management\n• Credit improvement\n• Financial planning\n\nWhat specific area would you like to explore? Feel free to ask me anything about your financial journey!"

// Fallback answers from a fixed keyword table. It never fails.
type Fallback struct{}

var _ ports.Advisor = Fallback{}

func (Fallback) Advise(_ context.Context, question, _ string) (ports.Advice, error) {
	return ports.Advice{Reply: FallbackReply(question), Source: SourceFallback}, nil
}

func FallbackReply(question string) string {
	q := strings.ToLower(question)
	for _, c := range cannedReplies {
		for _, k := range c.keywords {
			if strings.Contains(q, k) {
				return c.reply
			}
		}
	}
	return defaultReply
}
