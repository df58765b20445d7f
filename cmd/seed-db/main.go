package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/modahub/storefront-api/internal/domain/product"
	"github.com/modahub/storefront-api/internal/domain/user"
	"github.com/modahub/storefront-api/internal/storage/mongo"
)

type productJSON struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Category     string           `json:"category"`
	Description  string           `json:"description"`
	Image        string           `json:"image"`
	RegularPrice decimal.Decimal  `json:"regularPrice"`
	OfferPrice   *decimal.Decimal `json:"offerPrice"`
	Stock        int              `json:"stock"`
	Timer        *time.Time       `json:"timer"`
}

func main() {
	var (
		mongoURL      string
		mongoDB       string
		productsFile  string
		adminEmail    string
		adminPassword string
	)

	flag.StringVar(&mongoURL, "mongo-url", "", "MongoDB connection URL (or MONGO_URL env)")
	flag.StringVar(&mongoDB, "mongo-db", "storefront", "MongoDB database name")
	flag.StringVar(&productsFile, "products-file", "seed/products.json", "path to products JSON file")
	flag.StringVar(&adminEmail, "admin-email", "", "admin account email to seed (or STORE_SEED_ADMIN_EMAIL env)")
	flag.StringVar(&adminPassword, "admin-password", "", "admin account password to seed (or STORE_SEED_ADMIN_PASSWORD env)")
	flag.Parse()

	if mongoURL == "" {
		mongoURL = os.Getenv("MONGO_URL")
	}
	if mongoURL == "" {
		slog.Error("MongoDB URL is required: set --mongo-url or MONGO_URL")
		os.Exit(1)
	}
	if adminEmail == "" {
		adminEmail = os.Getenv("STORE_SEED_ADMIN_EMAIL")
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("STORE_SEED_ADMIN_PASSWORD")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, mongoURL, mongoDB, productsFile, adminEmail, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, mongoURL, mongoDB, productsFile, adminEmail, adminPassword string) error {
	slog.Info("connecting to database")

	store, err := mongo.Connect(ctx, mongoURL, mongoDB)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer func() {
		_ = store.Close(context.Background())
	}()

	if err := seedProducts(ctx, mongo.NewProductRepository(store), productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if adminEmail != "" && adminPassword != "" {
		if err := seedAdmin(ctx, mongo.NewUserRepository(store), adminEmail, adminPassword); err != nil {
			return errors.Wrap(err, "seed admin user")
		}
	}

	return nil
}

func seedProducts(ctx context.Context, repo *mongo.ProductRepository, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	seeded := 0
	for _, p := range products {
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		err := repo.Create(ctx, &product.Product{
			ID:           id,
			Name:         p.Name,
			Category:     p.Category,
			Description:  p.Description,
			Image:        p.Image,
			RegularPrice: p.RegularPrice,
			OfferPrice:   p.OfferPrice,
			Stock:        p.Stock,
			Timer:        p.Timer,
			CreatedAt:    time.Now().UTC(),
		})
		if mongodrv.IsDuplicateKeyError(err) {
			slog.Info("product already exists, skipping", slog.String("name", p.Name))
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "insert product %q", p.Name)
		}
		seeded++
	}

	slog.Info("seeded products", slog.Int("count", seeded))
	return nil
}

func seedAdmin(ctx context.Context, repo *mongo.UserRepository, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	err = repo.Create(ctx, &user.User{
		ID:           uuid.NewString(),
		Name:         "Administrator",
		Email:        email,
		PasswordHash: string(hash),
		Role:         user.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, user.ErrEmailTaken) {
		slog.Info("admin user already exists", slog.String("email", email))
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("seeded admin user", slog.String("email", email))
	return nil
}
