package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/datamodels/category"
	"github.com/example/storefront/internal/datamodels/product"
	"github.com/example/storefront/internal/logger"
	"github.com/example/storefront/internal/repository"
	"github.com/example/storefront/internal/service"
	"github.com/example/storefront/internal/validation"
)

// seedFile 商品里的 category 写分类名，导入时换成 ID
type seedFile struct {
	Categories []struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"categories"`
	Products []seedProduct `json:"products"`
}

type seedProduct struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Image       string            `json:"image"`
	Price       float64           `json:"price"`
	Featured    bool              `json:"featured"`
	Rating      *float64          `json:"rating"`
	Company     string            `json:"company"`
	Category    string            `json:"category"`
	Stock       int64             `json:"stock"`
	Variants    []product.Variant `json:"variants"`
}

func main() {
	configPath := flag.String("config", "", "配置文件路径，默认查找 ./config.yaml")
	file := flag.String("file", "products.json", "待导入的 JSON 文件")
	withCategories := flag.Bool("categories", false, "同时创建文件中的分类（已存在的跳过）")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if _, err := logger.Init(&cfg.Log); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zap.L().Sync()

	data, err := load(*file)
	if err != nil {
		zap.L().Fatal("read seed file failed", zap.String("file", *file), zap.Error(err))
	}

	repos, err := repository.Open(cfg)
	if err != nil {
		zap.L().Fatal("open storage failed", zap.Error(err))
	}
	categories := service.NewCategoryService(repos.Categories)
	products := service.NewProductService(repos.Products, repos.Categories, validation.NewVariantRules(cfg.VariantRules), nil)

	deleted, created, err := seed(context.Background(), data, *withCategories, categories, products)
	if err != nil {
		zap.L().Fatal("seed failed", zap.Int64("deleted", deleted), zap.Int("created", len(created)), zap.Error(err))
	}
	zap.L().Info("seed finished", zap.Int64("deleted", deleted), zap.Int("created", len(created)))
}

func load(path string) (*seedFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f seedFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &f, nil
}

// seed 先按需建分类，再整体替换商品
func seed(ctx context.Context, f *seedFile, withCategories bool, categories *service.CategoryService, products *service.ProductService) (int64, []*product.Product, error) {
	if withCategories {
		for _, c := range f.Categories {
			_, err := categories.Create(ctx, c.Name, c.Description)
			if err != nil && !errors.Is(err, apperr.ErrConflict) {
				return 0, nil, fmt.Errorf("category %q: %w", c.Name, err)
			}
		}
	}

	list, err := categories.List(ctx)
	if err != nil {
		return 0, nil, err
	}
	inputs, err := toInputs(f.Products, list)
	if err != nil {
		return 0, nil, err
	}
	return products.ReplaceAll(ctx, inputs)
}

func toInputs(items []seedProduct, cats []*category.Category) ([]service.ProductInput, error) {
	byName := make(map[string]string, len(cats))
	for _, c := range cats {
		byName[strings.ToLower(c.Name)] = c.ID
	}
	inputs := make([]service.ProductInput, 0, len(items))
	for _, p := range items {
		id, ok := byName[strings.ToLower(p.Category)]
		if !ok {
			return nil, fmt.Errorf("product %q: unknown category %q", p.Name, p.Category)
		}
		inputs = append(inputs, service.ProductInput{
			Name:        p.Name,
			Description: p.Description,
			Image:       p.Image,
			Price:       p.Price,
			Featured:    p.Featured,
			Rating:      p.Rating,
			Company:     p.Company,
			Category:    id,
			Stock:       p.Stock,
			Variants:    p.Variants,
		})
	}
	return inputs, nil
}
