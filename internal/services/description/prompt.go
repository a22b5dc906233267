package description

import (
	"fmt"
	"strings"

	"github.com/forgeapp/forge/internal/services/generation/models"
)

func systemPrompt(description, style string, tmpl models.AppTemplate) string {
	return fmt.Sprintf(`You are an expert React developer creating a complete, functional application from a user description.

USER REQUEST: "%s"
DETECTED APP TYPE: %s
STYLE PREFERENCE: %s

TEMPLATE GUIDANCE:
- App Name: %s
- Description: %s
- Suggested Components: %s
- Key Features: %s

🚨 CRITICAL REQUIREMENTS:

1. **COMPLETE APPLICATION**: Generate a fully functional React app with ALL necessary components
2. **MODERN STACK**: Use React with Vite, Tailwind CSS, and modern JavaScript features
3. **RESPONSIVE DESIGN**: Ensure the app works on desktop, tablet, and mobile
4. **FUNCTIONAL FEATURES**: All core features must actually work, not just be placeholders
5. **CLEAN CODE**: Use modern React patterns (hooks, functional components)

REQUIRED FILES TO GENERATE:
1. **App.jsx** - Main application component that ties everything together
2. **Component files** - All necessary components for the app functionality
3. **index.css** - Global styles and Tailwind imports (if needed)

STYLE GUIDELINES:
- %s

TECHNICAL REQUIREMENTS:
- Use only standard Tailwind CSS classes (no custom CSS variables)
- Implement proper state management with React hooks
- Add proper error handling and loading states
- Include responsive breakpoints (sm:, md:, lg:)
- Use semantic HTML elements
- Add proper accessibility attributes

FUNCTIONALITY REQUIREMENTS:
- All buttons and interactions must work
- Forms must handle input and validation
- Data should persist in localStorage where appropriate
- Include proper loading and error states
- Add smooth transitions and animations

DO NOT:
- Use external APIs unless specifically requested
- Create placeholder/dummy components that don't work
- Use custom CSS classes not in Tailwind
- Generate incomplete or broken functionality
- Create overly complex architectures for simple apps

REMEMBER: The user wants a working application they can immediately use and interact with!`,
		description,
		tmpl.Name,
		style,
		tmpl.Name,
		tmpl.Description,
		strings.Join(tmpl.Components, ", "),
		strings.Join(tmpl.Features, ", "),
		styleGuidelines[style],
	)
}

func userPrompt(description, style string, tmpl models.AppTemplate) string {
	return fmt.Sprintf(`Create a complete %s based on this description: "%s"

Generate all necessary React components and make sure the application is fully functional. Focus on creating a great user experience with the %s design style.`,
		strings.ToLower(tmpl.Name), description, style)
}
