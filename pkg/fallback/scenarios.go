package fallback

// Permit is one license or permit in a scenario template.
type Permit struct {
	Name           string  `json:"name"`
	Agency         string  `json:"agency"`
	EstimatedCost  float64 `json:"estimated_cost"`
	ProcessingDays int     `json:"processing_days"`
}

// Risk is one risk entry in a scenario template.
type Risk struct {
	Title      string `json:"title"`
	Severity   string `json:"severity"`
	Mitigation string `json:"mitigation"`
}

type category struct {
	key         string
	label       string
	keywords    []string
	permits     []Permit
	buildout    float64
	equipment   float64
	inventory   float64
	weeks       int
	risks       []Risk
	recommended []string
}

type locality struct {
	key        string
	city       string
	state      string
	keywords   []string
	multiplier float64
	agency     string
	extraWeeks int
	localRisk  *Risk
}

// Categories are matched in order; the first keyword hit wins, so more
// specific businesses come before broader ones.
var categories = []category{
	{
		key:      "coffee_shop",
		label:    "coffee shop",
		keywords: []string{"coffee", "cafe", "café", "espresso", "tea house"},
		permits: []Permit{
			{Name: "Business License", Agency: "City Clerk", EstimatedCost: 150, ProcessingDays: 14},
			{Name: "Food Service Permit", Agency: "Health Department", EstimatedCost: 700, ProcessingDays: 30},
			{Name: "Certificate of Occupancy", Agency: "Building Department", EstimatedCost: 400, ProcessingDays: 21},
			{Name: "Sign Permit", Agency: "Planning Department", EstimatedCost: 250, ProcessingDays: 14},
		},
		buildout:  85000,
		equipment: 45000,
		inventory: 8000,
		weeks:     16,
		risks: []Risk{
			{Title: "Health inspection delays", Severity: "medium", Mitigation: "Book the pre-opening inspection as soon as plans are approved."},
			{Title: "Grease trap requirement", Severity: "low", Mitigation: "Confirm plumbing requirements with the landlord before signing."},
		},
		recommended: []string{
			"Confirm the space's zoning allows food service before signing a lease.",
			"Submit food service plans for health review early.",
			"Budget a contingency for equipment installation.",
		},
	},
	{
		key:      "food_truck",
		label:    "food truck",
		keywords: []string{"food truck", "food cart", "mobile food"},
		permits: []Permit{
			{Name: "Business License", Agency: "City Clerk", EstimatedCost: 150, ProcessingDays: 14},
			{Name: "Mobile Food Facility Permit", Agency: "Health Department", EstimatedCost: 900, ProcessingDays: 30},
			{Name: "Fire Safety Inspection", Agency: "Fire Department", EstimatedCost: 200, ProcessingDays: 10},
			{Name: "Commissary Agreement", Agency: "Health Department", EstimatedCost: 0, ProcessingDays: 7},
		},
		buildout:  0,
		equipment: 75000,
		inventory: 5000,
		weeks:     10,
		risks: []Risk{
			{Title: "Parking restrictions", Severity: "medium", Mitigation: "Map permitted vending zones before committing to routes."},
		},
		recommended: []string{
			"Secure a commissary kitchen agreement first.",
			"Verify vending zone rules for each neighborhood you plan to serve.",
		},
	},
	{
		key:      "restaurant",
		label:    "restaurant",
		keywords: []string{"restaurant", "diner", "bistro", "eatery", "pizzeria", "bar and grill"},
		permits: []Permit{
			{Name: "Business License", Agency: "City Clerk", EstimatedCost: 150, ProcessingDays: 14},
			{Name: "Food Service Permit", Agency: "Health Department", EstimatedCost: 1200, ProcessingDays: 45},
			{Name: "Certificate of Occupancy", Agency: "Building Department", EstimatedCost: 600, ProcessingDays: 30},
			{Name: "Fire Safety Inspection", Agency: "Fire Department", EstimatedCost: 300, ProcessingDays: 14},
			{Name: "Liquor License", Agency: "State Alcohol Board", EstimatedCost: 5000, ProcessingDays: 90},
		},
		buildout:  250000,
		equipment: 120000,
		inventory: 15000,
		weeks:     26,
		risks: []Risk{
			{Title: "Liquor license timeline", Severity: "high", Mitigation: "Apply early or plan to open without alcohol service."},
			{Title: "Kitchen ventilation requirements", Severity: "medium", Mitigation: "Have a mechanical engineer review hood and exhaust plans."},
		},
		recommended: []string{
			"Start the liquor license application in parallel with the build-out.",
			"Hire an architect familiar with local health code.",
			"Negotiate rent abatement for the build-out period.",
		},
	},
	{
		key:      "bakery",
		label:    "bakery",
		keywords: []string{"bakery", "bake shop", "pastry", "patisserie", "donut"},
		permits: []Permit{
			{Name: "Business License", Agency: "City Clerk", EstimatedCost: 150, ProcessingDays: 14},
			{Name: "Food Processing Permit", Agency: "Health Department", EstimatedCost: 800, ProcessingDays: 30},
			{Name: "Certificate of Occupancy", Agency: "Building Department", EstimatedCost: 400, ProcessingDays: 21},
		},
		buildout:  90000,
		equipment: 60000,
		inventory: 6000,
		weeks:     18,
		risks: []Risk{
			{Title: "Oven venting and fire code", Severity: "medium", Mitigation: "Confirm fire suppression needs before ordering ovens."},
		},
		recommended: []string{
			"Check whether wholesale sales need a separate processing license.",
			"Plan oven placement around existing venting.",
		},
	},
	{
		key:      "salon",
		label:    "salon",
		keywords: []string{"salon", "barber", "spa", "nail", "beauty"},
		permits: []Permit{
			{Name: "Business License", Agency: "City Clerk", EstimatedCost: 150, ProcessingDays: 14},
			{Name: "Establishment License", Agency: "State Board of Cosmetology", EstimatedCost: 250, ProcessingDays: 30},
			{Name: "Certificate of Occupancy", Agency: "Building Department", EstimatedCost: 400, ProcessingDays: 21},
		},
		buildout:  60000,
		equipment: 30000,
		inventory: 7000,
		weeks:     12,
		risks: []Risk{
			{Title: "State establishment inspection", Severity: "medium", Mitigation: "Schedule the state inspection before the planned opening date."},
		},
		recommended: []string{
			"Verify every stylist holds a current state license.",
			"Confirm plumbing capacity for wash stations.",
		},
	},
	{
		key:      "gym",
		label:    "fitness studio",
		keywords: []string{"gym", "fitness", "yoga", "pilates", "crossfit"},
		permits: []Permit{
			{Name: "Business License", Agency: "City Clerk", EstimatedCost: 150, ProcessingDays: 14},
			{Name: "Certificate of Occupancy", Agency: "Building Department", EstimatedCost: 500, ProcessingDays: 21},
			{Name: "Assembly Occupancy Review", Agency: "Fire Department", EstimatedCost: 300, ProcessingDays: 21},
		},
		buildout:  70000,
		equipment: 80000,
		inventory: 2000,
		weeks:     14,
		risks: []Risk{
			{Title: "Noise complaints", Severity: "low", Mitigation: "Add sound insulation for shared walls and floors."},
		},
		recommended: []string{
			"Check occupancy limits for group classes.",
			"Carry liability insurance before the first class.",
		},
	},
	{
		key:      "retail",
		label:    "retail store",
		keywords: []string{"retail", "boutique", "shop", "store", "clothing", "bookstore"},
		permits: []Permit{
			{Name: "Business License", Agency: "City Clerk", EstimatedCost: 150, ProcessingDays: 14},
			{Name: "Seller's Permit", Agency: "State Tax Agency", EstimatedCost: 0, ProcessingDays: 7},
			{Name: "Certificate of Occupancy", Agency: "Building Department", EstimatedCost: 300, ProcessingDays: 21},
			{Name: "Sign Permit", Agency: "Planning Department", EstimatedCost: 250, ProcessingDays: 14},
		},
		buildout:  40000,
		equipment: 15000,
		inventory: 30000,
		weeks:     10,
		risks: []Risk{
			{Title: "Inventory carrying cost", Severity: "medium", Mitigation: "Open with a lean initial inventory and reorder on sell-through."},
		},
		recommended: []string{
			"Register for sales tax collection before the first sale.",
			"Confirm signage rules with the landlord and the city.",
		},
	},
}

var genericCategory = category{
	key:      "small_business",
	label:    "small business",
	keywords: nil,
	permits: []Permit{
		{Name: "Business License", Agency: "City Clerk", EstimatedCost: 150, ProcessingDays: 14},
		{Name: "Certificate of Occupancy", Agency: "Building Department", EstimatedCost: 400, ProcessingDays: 21},
	},
	buildout:  50000,
	equipment: 20000,
	inventory: 10000,
	weeks:     12,
	risks: []Risk{
		{Title: "Unconfirmed zoning", Severity: "medium", Mitigation: "Ask the planning department for a zoning verification letter."},
	},
	recommended: []string{
		"Confirm the intended use is allowed at the address.",
		"Register the business entity and obtain a tax id.",
		"Talk to the city's small business office about required permits.",
	},
}

var localities = []locality{
	{
		key:        "san_francisco",
		city:       "San Francisco",
		state:      "CA",
		keywords:   []string{"san francisco", "sf", "bay area"},
		multiplier: 1.45,
		agency:     "SF Office of Small Business",
		extraWeeks: 8,
		localRisk:  &Risk{Title: "Conditional use review", Severity: "high", Mitigation: "Check whether the neighborhood commercial district requires conditional use authorization."},
	},
	{
		key:        "los_angeles",
		city:       "Los Angeles",
		state:      "CA",
		keywords:   []string{"los angeles", "la", "hollywood"},
		multiplier: 1.3,
		agency:     "LA Department of Building and Safety",
		extraWeeks: 6,
	},
	{
		key:        "new_york",
		city:       "New York",
		state:      "NY",
		keywords:   []string{"new york", "nyc", "brooklyn", "manhattan", "queens"},
		multiplier: 1.5,
		agency:     "NYC Department of Small Business Services",
		extraWeeks: 8,
		localRisk:  &Risk{Title: "Landmark district approvals", Severity: "medium", Mitigation: "Check the Landmarks Preservation Commission map for the storefront."},
	},
	{
		key:        "austin",
		city:       "Austin",
		state:      "TX",
		keywords:   []string{"austin"},
		multiplier: 1.05,
		agency:     "Austin Development Services Department",
		extraWeeks: 2,
	},
	{
		key:        "seattle",
		city:       "Seattle",
		state:      "WA",
		keywords:   []string{"seattle"},
		multiplier: 1.25,
		agency:     "Seattle Department of Construction and Inspections",
		extraWeeks: 4,
	},
	{
		key:        "chicago",
		city:       "Chicago",
		state:      "IL",
		keywords:   []string{"chicago"},
		multiplier: 1.15,
		agency:     "Chicago Department of Business Affairs",
		extraWeeks: 4,
	},
}

var unknownLocality = locality{
	key:        "unspecified",
	city:       "Unspecified",
	state:      "",
	multiplier: 1.0,
	agency:     "Local permitting office",
	extraWeeks: 0,
}
