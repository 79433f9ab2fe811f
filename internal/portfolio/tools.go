package portfolio

import "github.com/finassist/fin/internal/api"

// Tool identifiers in the order of the tools bar.
const (
	ToolPositions       = "positions"
	ToolOrders          = "orders"
	ToolTrade           = "trade"
	ToolAnalysis        = "analysis"
	ToolTotalAssets     = "total-assets"
	ToolCustomPortfolio = "custom-portfolio"
)

// Tools lists every tool; the tools bar selects them with keys 1 to 6.
var Tools = []string{
	ToolPositions,
	ToolOrders,
	ToolTrade,
	ToolAnalysis,
	ToolTotalAssets,
	ToolCustomPortfolio,
}

// ToolTitle returns the tab label of a tool.
func ToolTitle(tool string) string {
	switch tool {
	case ToolPositions:
		return "Positions"
	case ToolOrders:
		return "Orders"
	case ToolTrade:
		return "Trade"
	case ToolAnalysis:
		return "Analysis"
	case ToolTotalAssets:
		return "Total Assets"
	case ToolCustomPortfolio:
		return "Custom Portfolio"
	default:
		return FormatInfoType(tool)
	}
}

// CompanionMessage returns the chat message sent when a tool is opened
// from the tools bar.
func CompanionMessage(tool string) string {
	switch tool {
	case ToolPositions:
		return "Could you analyze my current portfolio positions and provide insights about my holdings?"
	case ToolOrders:
		return "Please show me my recent orders and any patterns or trends you notice."
	case ToolTrade:
		return "I'd like to place a trade. Could you help me understand my current trading options?"
	case ToolAnalysis:
		return "Could you provide a detailed market analysis?"
	case "portfolio-performance":
		return "Please provide a comprehensive analysis of my portfolio performance. What are the key trends and metrics I should be aware of?"
	default:
		return "Show me information about " + tool
	}
}

// ActionTarget maps an assistant action to the tool it opens and the chat
// message sent with it. An empty message means none is sent; an empty tool
// means the action opens nothing by itself.
func ActionTarget(actionType string) (tool, message string) {
	switch actionType {
	case api.ActionShowPositions:
		return ToolPositions, CompanionMessage(ToolPositions)
	case api.ActionShowOrders:
		return ToolOrders, CompanionMessage(ToolOrders)
	case api.ActionShowTrade:
		return ToolTrade, CompanionMessage(ToolTrade)
	case api.ActionShowAnalysis:
		return ToolTotalAssets, ""
	case api.ActionShowCustomPortfolio:
		return ToolCustomPortfolio, "I'd like to explore custom portfolio options. What strategies would you recommend?"
	case api.ActionPlaceOrder:
		return ToolTrade, ""
	case api.ActionAnalyzeSymbol:
		return ToolAnalysis, ""
	default:
		return "", ""
	}
}
