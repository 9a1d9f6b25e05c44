package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/foodmap/internal/models"
	"github.com/foodmap/internal/repositories"
	"github.com/foodmap/pkg/geo"
	"github.com/foodmap/pkg/utils"
)

// DistanceTolerance 半径筛选的容差系数，5 英里半径实际截止于 5.5 英里
const DistanceTolerance = 1.10

// CreateResourceInput 新建资源时调用方可提供的字段
type CreateResourceInput struct {
	Name                string
	Type                string
	Address             string
	Latitude            string
	Longitude           string
	Hours               *string
	Phone               *string
	AppointmentRequired bool
	VerificationSource  string
}

// ResourceService 定义了资源查询与创建的接口
type ResourceService interface {
	// List 返回全部资源；origin 非空时附带距离并按距离升序，距离未知的排在最后
	List(ctx context.Context, origin *geo.Point) ([]models.FoodResource, error)
	Get(ctx context.Context, id string) (*models.FoodResource, error)
	Create(ctx context.Context, in CreateResourceInput) (*models.FoodResource, error)
	Count(ctx context.Context) (int64, error)
}

type resourceService struct {
	store repositories.ResourceStore
	now   func() time.Time
}

// NewResourceService 创建 ResourceService，store 为 nil 时所有操作返回 ErrStoreNotConfigured
func NewResourceService(store repositories.ResourceStore) ResourceService {
	return &resourceService{store: store, now: time.Now}
}

func (s *resourceService) List(ctx context.Context, origin *geo.Point) ([]models.FoodResource, error) {
	if s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	resources, err := s.store.ListResources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	if origin == nil || !origin.Valid() {
		return resources, nil
	}
	AnnotateDistances(resources, *origin)
	SortByDistance(resources)
	return resources, nil
}

func (s *resourceService) Get(ctx context.Context, id string) (*models.FoodResource, error) {
	if s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	r, err := s.store.GetResource(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, translateStoreError(err)
	}
	return r, nil
}

func (s *resourceService) Create(ctx context.Context, in CreateResourceInput) (*models.FoodResource, error) {
	if s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	v := validationErrors{}
	v.required("name", in.Name)
	v.required("type", in.Type)
	v.required("address", in.Address)
	v.required("latitude", in.Latitude)
	v.required("longitude", in.Longitude)
	if _, missing := v["latitude"]; !missing {
		if _, missing := v["longitude"]; !missing {
			if err := utils.ValidateCoordinates(in.Latitude, in.Longitude); err != nil {
				v["coordinates"] = err.Error()
			}
		}
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	now := s.now()
	source := strings.TrimSpace(in.VerificationSource)
	if source == "" {
		source = models.VerificationSourceInitial
	}
	r := &models.FoodResource{
		ID:                  uuid.NewString(),
		Name:                strings.TrimSpace(in.Name),
		Type:                CanonicalCategory(in.Type),
		Address:             strings.TrimSpace(in.Address),
		Latitude:            strings.TrimSpace(in.Latitude),
		Longitude:           strings.TrimSpace(in.Longitude),
		Hours:               utils.OptionalString(in.Hours),
		Phone:               utils.OptionalString(in.Phone),
		AppointmentRequired: in.AppointmentRequired,
		LastVerifiedDate:    &now,
		VerificationSource:  source,
		CreatedAt:           now,
	}
	if err := s.store.CreateResource(ctx, r); err != nil {
		return nil, fmt.Errorf("create resource: %w", translateStoreError(err))
	}
	return r, nil
}

func (s *resourceService) Count(ctx context.Context) (int64, error) {
	if s.store == nil {
		return 0, ErrStoreNotConfigured
	}
	return s.store.CountResources(ctx)
}

// AnnotateDistances 为每个坐标可解析的资源写入保留一位小数的距离，其余置空
func AnnotateDistances(resources []models.FoodResource, origin geo.Point) {
	for i := range resources {
		resources[i].Distance = nil
		p, ok := geo.ParsePoint(resources[i].Latitude, resources[i].Longitude)
		if !ok {
			continue
		}
		d := geo.RoundMiles(geo.DistanceBetween(origin, p))
		resources[i].Distance = &d
	}
}

// SortByDistance 稳定排序，距离未知的资源保持原相对顺序排在末尾
func SortByDistance(resources []models.FoodResource) {
	sort.SliceStable(resources, func(i, j int) bool {
		a, b := resources[i].Distance, resources[j].Distance
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}

// ResourceFilter 请求级筛选条件，零值表示不过滤
type ResourceFilter struct {
	Category    string
	MaxDistance float64
}

// FilterResources 按类别与半径筛选已附带距离的列表。
// 半径生效时距离未知的资源一律排除。
func FilterResources(resources []models.FoodResource, f ResourceFilter) []models.FoodResource {
	category := strings.TrimSpace(f.Category)
	if strings.EqualFold(category, "all") {
		category = ""
	}
	want := categoryKey(category)
	limit := f.MaxDistance * DistanceTolerance

	out := make([]models.FoodResource, 0, len(resources))
	for _, r := range resources {
		if category != "" && categoryKey(r.Type) != want {
			continue
		}
		if f.MaxDistance > 0 && (r.Distance == nil || *r.Distance > limit) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// CanonicalCategory 已知类别忽略大小写与多余空白匹配到标准写法，其余原样保留（仅去掉首尾空白）
func CanonicalCategory(s string) string {
	key := categoryKey(s)
	for _, known := range models.KnownCategories {
		if categoryKey(known) == key {
			return known
		}
	}
	return strings.TrimSpace(s)
}

// categoryKey 类别比较用的折叠形式，不用于存储
func categoryKey(s string) string {
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}
