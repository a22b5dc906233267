package description

import (
	"strings"

	"github.com/forgeapp/forge/internal/services/generation/models"
)

const fallbackAppType = "portfolio"

var templates = map[string]models.AppTemplate{
	"note-taking": {
		Name:        "Note Taking App",
		Description: "A clean, modern note-taking application with create, edit, delete, and search functionality",
		Components:  []string{"NoteList", "NoteEditor", "SearchBar", "NoteCard"},
		Features:    []string{"Create notes", "Edit notes", "Delete notes", "Search notes", "Local storage", "Rich text editing"},
	},
	"todo": {
		Name:        "Todo List App",
		Description: "A task management application with priority levels, categories, and completion tracking",
		Components:  []string{"TodoList", "TodoItem", "AddTodo", "FilterBar"},
		Features:    []string{"Add tasks", "Mark complete", "Priority levels", "Categories", "Filter tasks", "Local storage"},
	},
	"weather": {
		Name:        "Weather App",
		Description: "A weather application showing current conditions and forecasts",
		Components:  []string{"WeatherCard", "SearchLocation", "ForecastList", "WeatherDetails"},
		Features:    []string{"Current weather", "5-day forecast", "Location search", "Weather icons", "Temperature units"},
	},
	"calculator": {
		Name:        "Calculator App",
		Description: "A functional calculator with basic arithmetic operations",
		Components:  []string{"Calculator", "Display", "ButtonGrid", "CalculatorButton"},
		Features:    []string{"Basic operations", "Clear function", "Decimal support", "Keyboard input", "History"},
	},
	"blog": {
		Name:        "Blog Platform",
		Description: "A simple blog platform with posts, categories, and reading functionality",
		Components:  []string{"PostList", "PostCard", "PostDetail", "CategoryFilter"},
		Features:    []string{"View posts", "Read full articles", "Filter by category", "Responsive design", "Search posts"},
	},
	"portfolio": {
		Name:        "Portfolio Website",
		Description: "A personal portfolio website showcasing projects and skills",
		Components:  []string{"Hero", "About", "Projects", "Skills", "Contact"},
		Features:    []string{"Project showcase", "Skills display", "Contact form", "Responsive design", "Modern UI"},
	},
	"ecommerce": {
		Name:        "E-commerce Store",
		Description: "A product catalog with shopping cart functionality",
		Components:  []string{"ProductGrid", "ProductCard", "ShoppingCart", "ProductDetail"},
		Features:    []string{"Product catalog", "Shopping cart", "Product details", "Add to cart", "Cart management"},
	},
	"dashboard": {
		Name:        "Analytics Dashboard",
		Description: "A data visualization dashboard with charts and metrics",
		Components:  []string{"Dashboard", "MetricCard", "ChartContainer", "DataTable"},
		Features:    []string{"Data visualization", "Interactive charts", "Key metrics", "Responsive layout", "Real-time updates"},
	},
}

// checked in order, first match wins
var appTypeKeywords = []struct {
	appType  string
	keywords []string
}{
	{"note-taking", []string{"note", "journal", "diary"}},
	{"todo", []string{"todo", "task", "checklist"}},
	{"weather", []string{"weather", "forecast", "temperature"}},
	{"calculator", []string{"calculator", "math", "calculate"}},
	{"blog", []string{"blog", "article", "post"}},
	{"portfolio", []string{"portfolio", "resume", "showcase"}},
	{"ecommerce", []string{"shop", "store", "ecommerce", "product"}},
	{"dashboard", []string{"dashboard", "analytics", "chart", "data"}},
}

var styleGuidelines = map[string]string{
	"modern":       "Clean, minimalist design with subtle shadows and rounded corners",
	"playful":      "Bright colors, fun animations, and engaging interactions",
	"professional": "Corporate look with blues, grays, and clean typography",
	"artistic":     "Creative design with unique layouts and bold visual elements",
}

// DetectAppType matches description against the keyword table, falling
// back to a portfolio site.
func DetectAppType(description string) string {
	desc := strings.ToLower(description)
	for _, entry := range appTypeKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(desc, keyword) {
				return entry.appType
			}
		}
	}
	return fallbackAppType
}

// Template returns a copy of the template for appType.
func Template(appType string) models.AppTemplate {
	tmpl, ok := templates[appType]
	if !ok {
		tmpl = templates[fallbackAppType]
	}
	tmpl.Components = append([]string(nil), tmpl.Components...)
	tmpl.Features = append([]string(nil), tmpl.Features...)
	return tmpl
}
