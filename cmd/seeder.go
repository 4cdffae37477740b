package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"charge_books", "derivation_details", "derivations", "documents", "users", "employees", "departments"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		departments := []string{"Mesa de Partes", "Gerencia Municipal", "Recursos Humanos", "Tesorería"}
		departmentIDs := map[string]int64{}
		for _, name := range departments {
			var id int64
			row := db.Raw("SELECT id FROM departments WHERE name = ?", name).Row()
			if err := row.Scan(&id); err == nil {
				departmentIDs[name] = id
				continue
			}
			if err := db.Exec("INSERT INTO departments (name, created_at, updated_at) VALUES (?, now(), now())", name).Error; err != nil {
				log.Fatalf("failed to insert department %s: %v", name, err)
			}
			if err := db.Raw("SELECT id FROM departments WHERE name = ?", name).Row().Scan(&id); err != nil {
				log.Fatalf("failed to read department %s: %v", name, err)
			}
			departmentIDs[name] = id
			fmt.Println("Seeded department:", name)
		}

		employees := []struct {
			DNI        string
			FirstName  string
			LastName   string
			Gender     string
			Department string
		}{
			{"10000001", "Ana", "Quispe", "F", "Mesa de Partes"},
			{"10000002", "Luis", "Mendoza", "M", "Gerencia Municipal"},
			{"10000003", "Rosa", "Ccopa", "F", "Recursos Humanos"},
			{"10000004", "Jorge", "Huamán", "M", "Tesorería"},
		}
		employeeIDs := map[string]int64{}
		for _, e := range employees {
			var id int64
			row := db.Raw("SELECT id FROM employees WHERE dni = ?", e.DNI).Row()
			if err := row.Scan(&id); err == nil {
				employeeIDs[e.DNI] = id
				continue
			}
			if err := db.Exec(
				"INSERT INTO employees (dni, names, surnames, gender, is_active, department_id, created_at, updated_at) VALUES (?, ?, ?, ?, true, ?, now(), now())",
				e.DNI, e.FirstName, e.LastName, e.Gender, departmentIDs[e.Department],
			).Error; err != nil {
				log.Fatalf("failed to insert employee %s: %v", e.DNI, err)
			}
			if err := db.Raw("SELECT id FROM employees WHERE dni = ?", e.DNI).Row().Scan(&id); err != nil {
				log.Fatalf("failed to read employee %s: %v", e.DNI, err)
			}
			employeeIDs[e.DNI] = id
			fmt.Println("Seeded employee:", e.FirstName, e.LastName)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte("password"), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}

		users := []struct {
			Username    string
			Role        string
			EmployeeDNI string
		}{
			{"admin01", "admin", "10000002"},
			{"mesa01", "operator", "10000001"},
			{"rrhh01", "operator", "10000003"},
			{"teso01", "operator", "10000004"},
		}
		for _, u := range users {
			email := fmt.Sprintf("%s@%s", u.Username, cfg.Security.EmailDomain)
			var exists int
			if err := db.Raw("SELECT 1 FROM users WHERE username = ?", u.Username).Row().Scan(&exists); err == nil {
				fmt.Println("user already exists:", u.Username)
				continue
			}
			if err := db.Exec(
				"INSERT INTO users (username, email, password_hash, role, is_active, employee_id, created_at, updated_at) VALUES (?, ?, ?, ?, true, ?, now(), now())",
				u.Username, email, string(hash), u.Role, employeeIDs[u.EmployeeDNI],
			).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Username, err)
			}
			fmt.Println("Seeded user:", u.Username, "role:", u.Role)
		}

		fmt.Println("Seeding complete")
	},
}
