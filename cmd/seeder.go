package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with shared categories and a demo account for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		conn, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer conn.Close()

		db, err := initGorm(conn)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"budgets", "transactions", "categories", "auth_tokens", "profiles", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		shared := seedSharedCategories(db)
		demoID := seedDemoUser(db)
		seedDemoActivity(db, demoID, shared)
	},
}

type seedCategory struct {
	Name  string
	Type  string
	Icon  string
	Color string
}

var sharedCategories = []seedCategory{
	{"Salary", "income", "briefcase", "#2e7d32"},
	{"Freelance", "income", "laptop", "#388e3c"},
	{"Investments", "income", "trending-up", "#43a047"},
	{"Food & Dining", "expense", "utensils", "#e53935"},
	{"Transportation", "expense", "car", "#fb8c00"},
	{"Housing", "expense", "home", "#6d4c41"},
	{"Utilities", "expense", "zap", "#fdd835"},
	{"Entertainment", "expense", "film", "#8e24aa"},
	{"Healthcare", "expense", "heart", "#d81b60"},
	{"Shopping", "expense", "shopping-bag", "#1e88e5"},
}

// seedSharedCategories inserts the categories visible to every owner and
// returns their ids by name.
func seedSharedCategories(db *gorm.DB) map[string]string {
	ids := make(map[string]string, len(sharedCategories))
	for _, c := range sharedCategories {
		var id string
		row := db.Raw("SELECT id FROM categories WHERE user_id IS NULL AND name = ?", c.Name).Row()
		if err := row.Scan(&id); err == nil {
			ids[c.Name] = id
			continue
		}

		id = uuid.NewString()
		if err := db.Exec("INSERT INTO categories (id, user_id, name, type, icon, color, created_at, updated_at) VALUES (?, NULL, ?, ?, ?, ?, now(), now())",
			id, c.Name, c.Type, c.Icon, c.Color).Error; err != nil {
			log.Fatalf("failed to insert category %s: %v", c.Name, err)
		}
		ids[c.Name] = id
		fmt.Printf("Seeded shared category: %s\n", c.Name)
	}
	return ids
}

const (
	demoEmail    = "demo@example.com"
	demoPassword = "demo123456"
)

func seedDemoUser(db *gorm.DB) string {
	var id string
	if err := db.Raw("SELECT id FROM users WHERE email = ?", demoEmail).Row().Scan(&id); err == nil {
		fmt.Println("demo user already exists:", demoEmail)
		return id
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash demo password: %v", err)
	}

	id = uuid.NewString()
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("INSERT INTO users (id, email, password_hash, is_active, email_confirmed_at, created_at, updated_at) VALUES (?, ?, ?, true, now(), now(), now())",
			id, demoEmail, string(hash)).Error; err != nil {
			return err
		}
		return tx.Exec("INSERT INTO profiles (id, email, name, avatar_url, created_at, updated_at) VALUES (?, ?, ?, '', now(), now())",
			id, demoEmail, "Demo User").Error
	})
	if err != nil {
		log.Fatalf("failed to insert demo user: %v", err)
	}
	fmt.Println("Seeded demo user:", demoEmail)
	return id
}

// seedDemoActivity gives the demo account a month of transactions and a few
// budgets, unless it already has some.
func seedDemoActivity(db *gorm.DB, ownerID string, categories map[string]string) {
	var count int64
	if err := db.Raw("SELECT COUNT(*) FROM transactions WHERE user_id = ?", ownerID).Row().Scan(&count); err == nil && count > 0 {
		fmt.Println("demo transactions already present; skipping")
		return
	}

	today := calendar.Today(time.Local)
	month := today.MonthKey()
	first := month.First()
	day := func(n int) time.Time {
		d := first.AddDays(n - 1)
		if d.After(today) {
			d = today
		}
		return d.Time()
	}

	transactions := []struct {
		Category    string
		Type        string
		Amount      string
		Description string
		Date        time.Time
	}{
		{"Salary", "income", "5000.00", "Monthly salary", day(1)},
		{"Housing", "expense", "1500.00", "Rent", day(1)},
		{"Utilities", "expense", "120.45", "Electricity bill", day(3)},
		{"Food & Dining", "expense", "86.20", "Groceries", day(4)},
		{"Transportation", "expense", "45.00", "Fuel", day(5)},
		{"Food & Dining", "expense", "32.50", "Dinner out", day(7)},
		{"Entertainment", "expense", "15.99", "Streaming subscription", day(8)},
		{"Freelance", "income", "750.00", "Website project", day(10)},
		{"Shopping", "expense", "210.00", "Winter jacket", day(12)},
		{"Healthcare", "expense", "60.00", "Pharmacy", day(14)},
	}
	for _, t := range transactions {
		if err := db.Exec("INSERT INTO transactions (id, user_id, category_id, amount, type, description, date, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, now(), now())",
			uuid.NewString(), ownerID, categories[t.Category], t.Amount, t.Type, t.Description, t.Date).Error; err != nil {
			log.Fatalf("failed to insert transaction %q: %v", t.Description, err)
		}
	}
	fmt.Printf("Seeded %d demo transactions\n", len(transactions))

	budgets := []struct {
		Category string
		Amount   string
	}{
		{"Food & Dining", "400.00"},
		{"Transportation", "150.00"},
		{"Entertainment", "100.00"},
		{"Shopping", "200.00"},
	}
	for _, b := range budgets {
		if err := db.Exec("INSERT INTO budgets (id, user_id, category_id, amount, month, created_at, updated_at) VALUES (?, ?, ?, ?, ?, now(), now())",
			uuid.NewString(), ownerID, categories[b.Category], b.Amount, month.String()).Error; err != nil {
			log.Fatalf("failed to insert budget for %s: %v", b.Category, err)
		}
	}
	fmt.Printf("Seeded %d demo budgets for %s\n", len(budgets), month)
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")
}
