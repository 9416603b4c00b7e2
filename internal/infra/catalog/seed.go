package catalog

import "bakery/internal/domain/model"

const imageBase = "https://images.unsplash.com/"

// SeedCategories is the bakery's shelf layout.
func SeedCategories() []model.Category {
	return []model.Category{
		{ID: "1", Name: "Cakes", Slug: "cakes"},
		{ID: "2", Name: "Bread", Slug: "bread"},
		{ID: "3", Name: "Pastries", Slug: "pastries"},
		{ID: "4", Name: "Chin Chin", Slug: "chinchin"},
		{ID: "5", Name: "Pies & Snacks", Slug: "pies"},
	}
}

func option(name string, choices ...model.OptionChoice) model.ProductOption {
	for i := range choices {
		choices[i].Position = i
	}
	return model.ProductOption{Name: name, Choices: choices}
}

func choice(id, name string, adj int64) model.OptionChoice {
	return model.OptionChoice{ID: id, Name: name, PriceAdjustment: adj}
}

// SeedProducts is the default menu, priced in naira.
func SeedProducts() []model.Product {
	products := []model.Product{
		{
			ID: "1", Name: "Red Velvet Cake", Price: 12000, CategoryID: "1", CategorySlug: "cakes",
			Description: "Delicious moist red velvet cake with cream cheese frosting. Perfect for birthdays and celebrations.",
			ImageURL:    imageBase + "photo-1586788680434-30d324b2d46f?q=80&w=500&auto=format",
			Featured:    true, Customizable: true,
			Options: []model.ProductOption{
				option("Size",
					choice("small", `Small (6")`, 0),
					choice("medium", `Medium (8")`, 3000),
					choice("large", `Large (10")`, 6000)),
				option("Message",
					choice("none", "No Message", 0),
					choice("birthday", "Happy Birthday", 500),
					choice("custom", "Custom Message", 1000)),
			},
		},
		{
			ID: "2", Name: "Agege Bread", Price: 1500, CategoryID: "2", CategorySlug: "bread",
			Description: "Authentic Nigerian Agege bread, soft and perfect for breakfast.",
			ImageURL:    imageBase + "photo-1509440159596-0249088772ff?q=80&w=500&auto=format",
			Featured:    true,
		},
		{
			ID: "3", Name: "Meat Pie", Price: 800, CategoryID: "5", CategorySlug: "pies",
			Description: "Savory Nigerian meat pie filled with seasoned minced meat, potatoes, and carrots.",
			ImageURL:    imageBase + "photo-1621743478914-cc8a68d76208?q=80&w=500&auto=format",
			Featured:    true,
		},
		{
			ID: "4", Name: "Chin Chin", Price: 1200, CategoryID: "4", CategorySlug: "chinchin",
			Description: "Crunchy, sweet Nigerian snack made from fried dough.",
			ImageURL:    imageBase + "photo-1558961363-fa8fdf82db35?q=80&w=500&auto=format",
			Options: []model.ProductOption{
				option("Package Size",
					choice("small", "Small Pack (250g)", 0),
					choice("medium", "Medium Pack (500g)", 1000),
					choice("large", "Large Pack (1kg)", 2200)),
			},
		},
		{
			ID: "5", Name: "Chocolate Cupcakes", Price: 3500, CategoryID: "3", CategorySlug: "pastries",
			Description: "Moist chocolate cupcakes with rich chocolate frosting.",
			ImageURL:    imageBase + "photo-1576618148400-f54bed99fcfd?q=80&w=500&auto=format",
			Options: []model.ProductOption{
				option("Quantity",
					choice("6pack", "6 Pack", 0),
					choice("12pack", "12 Pack", 3500)),
			},
		},
		{
			ID: "6", Name: "Birthday Cake", Price: 15000, CategoryID: "1", CategorySlug: "cakes",
			Description:  "Customizable celebration cake perfect for birthdays.",
			ImageURL:     imageBase + "photo-1578985545062-69928b1d9587?q=80&w=500&auto=format",
			Customizable: true,
			Options: []model.ProductOption{
				option("Flavor",
					choice("vanilla", "Vanilla", 0),
					choice("chocolate", "Chocolate", 0),
					choice("redvelvet", "Red Velvet", 1000),
					choice("carrot", "Carrot", 1500)),
				option("Size",
					choice("small", `Small (6")`, 0),
					choice("medium", `Medium (8")`, 5000),
					choice("large", `Large (10")`, 10000)),
			},
		},
		{
			ID: "7", Name: "Sausage Roll", Price: 500, CategoryID: "5", CategorySlug: "pies",
			Description: "Flaky pastry wrapped around a savory sausage filling.",
			ImageURL:    imageBase + "photo-1546548970-71785318a17b?q=80&w=500&auto=format",
		},
		{
			ID: "8", Name: "Coconut Bread", Price: 1800, CategoryID: "2", CategorySlug: "bread",
			Description: "Traditional Nigerian bread with coconut flavor.",
			ImageURL:    imageBase + "photo-1608198093002-ad4e005484ec?q=80&w=500&auto=format",
		},
	}

	for i := range products {
		products[i].Available = true
		for j := range products[i].Options {
			products[i].Options[j].Position = j
		}
	}
	return products
}
