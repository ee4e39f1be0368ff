package cms

import "strings"

const fallbackAuthor = "Hash Haven Team"

var fallbackPosts = []PostSummary{
	{
		ID:       1,
		Slug:     "ultimate-guide-airport-transfers",
		Title:    "Ultimate Guide to Airport Transfers: Making Your Arrival Stress-Free",
		Excerpt:  "Everything you need to know about booking reliable airport transfers and what to expect from professional transport services.",
		Date:     "2024-10-01",
		Author:   fallbackAuthor,
		Category: "Travel Services",
		Image:    "/placeholder-blog-1.jpg",
	},
	{
		ID:       2,
		Slug:     "traveling-with-kids-babysitting-services",
		Title:    "Traveling with Kids: Why Professional Babysitting Services Are Game-Changers",
		Excerpt:  "How to enjoy your vacation while ensuring your children are safe, happy, and well-cared for with certified childcare professionals.",
		Date:     "2024-09-28",
		Author:   fallbackAuthor,
		Category: "Family Services",
		Image:    "/placeholder-blog-2.jpg",
	},
	{
		ID:       3,
		Slug:     "private-chef-vs-restaurant-dining",
		Title:    "Private Chef vs Restaurant Dining: The Luxury Experience at Your Airbnb",
		Excerpt:  "Discover why hiring a private chef for your stay offers unmatched convenience, customization, and memorable culinary experiences.",
		Date:     "2024-09-25",
		Author:   fallbackAuthor,
		Category: "Culinary Services",
		Image:    "/placeholder-blog-3.jpg",
	},
	{
		ID:       4,
		Slug:     "safari-etiquette-first-time-guests",
		Title:    "Safari Etiquette: What Every First-Time Safari Guest Should Know",
		Excerpt:  "Essential tips for safari tours including what to wear, how to behave around wildlife, and making the most of your adventure.",
		Date:     "2024-09-22",
		Author:   fallbackAuthor,
		Category: "Adventure Tours",
		Image:    "/placeholder-blog-4.jpg",
	},
	{
		ID:       5,
		Slug:     "choosing-perfect-airbnb-property",
		Title:    "Choosing the Perfect Airbnb Property for Your Group Size and Needs",
		Excerpt:  "A comprehensive guide to selecting accommodations that match your group size, budget, and specific requirements.",
		Date:     "2024-09-20",
		Author:   fallbackAuthor,
		Category: "Property Selection",
		Image:    "/placeholder-blog-5.jpg",
	},
	{
		ID:       6,
		Slug:     "local-errands-concierge-services",
		Title:    "Local Errands and Concierge Services: Your Personal Assistant Away From Home",
		Excerpt:  "From grocery shopping to dry cleaning pickup, learn how concierge services can make your stay completely hassle-free.",
		Date:     "2024-09-18",
		Author:   fallbackAuthor,
		Category: "Concierge Services",
		Image:    "/placeholder-blog-6.jpg",
	},
	{
		ID:       7,
		Slug:     "hidden-gems-local-tour-guide",
		Title:    "Hidden Gems: Why a Local Tour Guide Beats Guidebooks Every Time",
		Excerpt:  "Discover authentic experiences and secret spots that only locals know with professional tour guide services.",
		Date:     "2024-09-15",
		Author:   fallbackAuthor,
		Category: "Local Experiences",
		Image:    "/placeholder-blog-7.jpg",
	},
	{
		ID:       8,
		Slug:     "sightseeing-tours-beyond-tourist-traps",
		Title:    "Sightseeing Tours: Beyond the Tourist Traps",
		Excerpt:  "Experience authentic culture and hidden treasures with curated sightseeing tours designed for discerning travelers.",
		Date:     "2024-09-12",
		Author:   fallbackAuthor,
		Category: "Sightseeing",
		Image:    "/placeholder-blog-8.jpg",
	},
}

var fallbackArticle = Article{
	Slug:  "welcome",
	Title: "Welcome to Hash Haven Blog",
	Content: `<p class="text-lg text-gray-600 dark:text-gray-300 mb-6">Welcome to Hash Haven's travel and hospitality blog! We're integrating with our WordPress backend to bring you the latest insights.</p>
<div class="bg-pink-50 dark:bg-pink-900/20 p-6 rounded-lg my-8">
  <h3 class="text-pink-600 dark:text-pink-400 font-semibold mb-2 text-lg">WordPress Integration</h3>
  <p class="mb-4">Our content management system is being configured. Soon you'll see dynamic content from our WordPress backend.</p>
  <a href="/blog" class="bg-pink-600 text-white px-6 py-3 rounded-md hover:bg-pink-700 inline-block font-medium">Back to Blog</a>
</div>`,
	Date:     "2024-10-01",
	ReadTime: "2 min read",
	Fallback: true,
}

// fallbackPage returns a copy of the requested page of built-in summaries.
func fallbackPage(page, perPage int) []PostSummary {
	start := (page - 1) * perPage
	if start >= len(fallbackPosts) {
		return []PostSummary{}
	}
	end := start + perPage
	if end > len(fallbackPosts) {
		end = len(fallbackPosts)
	}
	out := make([]PostSummary, end-start)
	copy(out, fallbackPosts[start:end])
	return out
}

func searchFallback(query string) []PostSummary {
	q := strings.ToLower(query)
	out := []PostSummary{}
	for _, p := range fallbackPosts {
		if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Excerpt), q) {
			out = append(out, p)
		}
	}
	return out
}
