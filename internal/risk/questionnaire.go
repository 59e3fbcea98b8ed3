package risk

// Option is one selectable answer with its scoring weight.
type Option struct {
	Label  string `json:"label"`
	Weight int    `json:"weight"`
}

// Question is a fixed questionnaire entry. Options are presented in order;
// answers reference them by index.
type Question struct {
	Number  int      `json:"number"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// QuickOption is a predefined profile for the fast-track path that skips
// the questionnaire entirely.
type QuickOption struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

var questionnaire = []Question{
	{
		Number: 1,
		Text:   "In general, how would your friends describe you as a risk taker?",
		Options: []Option{
			{Label: "A real gambler", Weight: 4},
			{Label: "Willing to take risks after thorough research", Weight: 3},
			{Label: "Cautious", Weight: 2},
			{Label: "A real risk avoider", Weight: 1},
		},
	},
	{
		Number: 2,
		Text:   "You are on a TV game show and can choose one of the following prizes. Which do you take?",
		Options: []Option{
			{Label: "₹10,000 in cash", Weight: 1},
			{Label: "50% chance at winning ₹50,000", Weight: 2},
			{Label: "25% chance at winning ₹1,00,000", Weight: 3},
			{Label: "5% chance at winning ₹10,00,000", Weight: 4},
		},
	},
	{
		Number: 3,
		Text:   "You have just finished saving for a dream vacation. Three weeks before you leave, you lose your job. You would:",
		Options: []Option{
			{Label: "Cancel the vacation", Weight: 1},
			{Label: "Take a much more modest vacation", Weight: 2},
			{Label: "Go as scheduled, reasoning that you need the break before your job search", Weight: 3},
			{Label: "Extend your vacation, treating it as a last chance to enjoy", Weight: 4},
		},
	},
	{
		Number: 4,
		Text:   "If you unexpectedly received ₹2,00,000 to invest, what would you do?",
		Options: []Option{
			{Label: "Deposit it in a bank account or fixed deposit", Weight: 1},
			{Label: "Invest in safe, high-quality bonds or debt mutual funds", Weight: 2},
			{Label: "Invest in equity mutual funds or stocks", Weight: 3},
		},
	},
	{
		Number: 5,
		Text:   "When you think about investing in equity mutual funds or stocks, how comfortable are you?",
		Options: []Option{
			{Label: "Not at all comfortable", Weight: 1},
			{Label: "Somewhat comfortable", Weight: 2},
			{Label: "Very comfortable", Weight: 3},
		},
	},
	{
		Number: 6,
		Text:   `When you hear the word "risk," which comes to mind first?`,
		Options: []Option{
			{Label: "Loss", Weight: 1},
			{Label: "Uncertainty", Weight: 2},
			{Label: "Opportunity", Weight: 3},
			{Label: "Thrill", Weight: 4},
		},
	},
	{
		Number: 7,
		Text:   "Suppose experts predict prices of gold, real estate, or collectibles will rise, while bond prices may fall. Most of your investments are in government bonds. What would you do?",
		Options: []Option{
			{Label: "Hold the bonds", Weight: 1},
			{Label: "Sell bonds; split proceeds between deposits and gold/real-estate funds", Weight: 2},
			{Label: "Invest all proceeds in gold/real-estate funds", Weight: 3},
			{Label: "Invest all proceeds and borrow more to invest further", Weight: 4},
		},
	},
	{
		Number: 8,
		Text:   "Given the following investment choices and their best/worst case returns, which do you prefer?",
		Options: []Option{
			{Label: "3% gain best case, 0% worst case", Weight: 1},
			{Label: "10% gain best case, -2% worst case", Weight: 2},
			{Label: "25% gain best case, -8% worst case", Weight: 3},
			{Label: "50% gain best case, -20% worst case", Weight: 4},
		},
	},
	{
		Number: 9,
		Text:   "Your portfolio dropped 20% in a month during a market fall. You would:",
		Options: []Option{
			{Label: "Sell all investments", Weight: 1},
			{Label: "Sell some investments", Weight: 2},
			{Label: "Do nothing and hold", Weight: 3},
			{Label: "Invest more to average down", Weight: 4},
		},
	},
	{
		Number: 10,
		Text:   "How stable is your primary source of income?",
		Options: []Option{
			{Label: "Very unstable", Weight: 1},
			{Label: "Somewhat unstable", Weight: 2},
			{Label: "Stable", Weight: 3},
			{Label: "Very stable with growth", Weight: 4},
		},
	},
	{
		Number: 11,
		Text:   "How many years until you expect to withdraw a significant portion of this investment?",
		Options: []Option{
			{Label: "Less than 1 year", Weight: 1},
			{Label: "1–3 years", Weight: 2},
			{Label: "3–7 years", Weight: 3},
			{Label: "More than 7 years", Weight: 4},
		},
	},
	{
		Number: 12,
		Text:   "How would you feel if your long-term portfolio delivered 10% annual return but with large short-term ups and downs?",
		Options: []Option{
			{Label: "Very uncomfortable", Weight: 1},
			{Label: "Uncomfortable", Weight: 2},
			{Label: "Comfortable", Weight: 3},
			{Label: "Excited", Weight: 4},
		},
	},
	{
		Number: 13,
		Text:   "Your trusted friend is forming an investor group for a startup venture that could multiply your money many times if successful, but may fail. The chance of success is about 20%. If you had the money, how much would you invest?",
		Options: []Option{
			{Label: "Nothing", Weight: 1},
			{Label: "One month's salary", Weight: 2},
			{Label: "Three months' salary", Weight: 3},
			{Label: "Six months' salary", Weight: 4},
		},
	},
}

var quickOptions = []QuickOption{
	{Category: "Low Risk", Description: "Capital protection, fine with lower returns."},
	{Category: "Medium Risk", Description: "Balance between growth and stability (default)."},
	{Category: "High Risk", Description: "Okay with big ups/downs for higher growth."},
}

// Questionnaire returns the fixed 13-question set. The slice is a copy;
// the underlying questions never change.
func Questionnaire() []Question {
	out := make([]Question, len(questionnaire))
	copy(out, questionnaire)
	return out
}

// QuestionCount is the required length of an answer sequence.
const QuestionCount = 13

// QuickOptions returns the three fast-track profiles in display order.
// Medium Risk is the conventional default; Moderate is reachable only
// through the full questionnaire.
func QuickOptions() []QuickOption {
	out := make([]QuickOption, len(quickOptions))
	copy(out, quickOptions)
	return out
}
