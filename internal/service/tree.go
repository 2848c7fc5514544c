package service

import (
	"PortfolioCMS/internal/model"
	"PortfolioCMS/internal/repo"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// Crumb элемент навигационной цепочки.
type Crumb struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TreeNode узел материализованного дерева папок.
type TreeNode struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Color      string      `json:"color"`
	Icon       string      `json:"icon"`
	MediaCount int64       `json:"media_count"`
	Children   []*TreeNode `json:"children"`
}

// FolderContents содержимое папки (или корня, если Folder == nil).
type FolderContents struct {
	Folder      *model.Folder  `json:"folder"`
	Breadcrumbs []Crumb        `json:"breadcrumbs"`
	Folders     []model.Folder `json:"folders"`
	Media       []model.Media  `json:"media"`
}

// Виды нарушений целостности.
const (
	IssueCycle          = "cycle"
	IssueDanglingParent = "dangling_parent"
	IssueDuplicateName  = "duplicate_name"
)

// IntegrityIssue найденное нарушение структуры дерева.
type IntegrityIssue struct {
	FolderID string `json:"folder_id"`
	Kind     string `json:"kind"`
	Detail   string `json:"detail"`
}

// walkUp обходит цепочку от id к корню, вызывая visit для каждой папки (начиная с самой id).
// Обход ограничен числом папок и множеством посещённых: повреждённый граф даёт ErrIntegrity.
func (t *FolderTree) walkUp(ctx context.Context, id string, visit func(f *model.Folder) (stop bool)) error {
	limit, err := t.folders.Count(ctx)
	if err != nil {
		return err
	}
	seen := make(map[string]struct{})
	cur := id
	for {
		if _, ok := seen[cur]; ok {
			return fmt.Errorf("cycle at folder %q reached from %q: %w", cur, id, ErrIntegrity)
		}
		if int64(len(seen)) >= limit {
			return fmt.Errorf("ancestor chain of %q exceeds %d folders: %w", id, limit, ErrIntegrity)
		}
		f, err := t.folders.GetByID(ctx, cur)
		if err != nil {
			if len(seen) == 0 {
				return notFound(err, "folder", cur)
			}
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("folder %q points to missing parent %q: %w", id, cur, ErrIntegrity)
			}
			return err
		}
		seen[cur] = struct{}{}
		if visit(f) || f.ParentID == nil {
			return nil
		}
		cur = *f.ParentID
	}
}

// IsDescendant сообщает, лежит ли candidateID где-то под ancestorID.
func (t *FolderTree) IsDescendant(ctx context.Context, candidateID, ancestorID string) (bool, error) {
	found := false
	err := t.walkUp(ctx, candidateID, func(f *model.Folder) bool {
		if f.ID == candidateID {
			return false
		}
		found = f.ID == ancestorID
		return found
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

// Breadcrumbs возвращает путь от корня до папки включительно. nil — пустой путь.
func (t *FolderTree) Breadcrumbs(ctx context.Context, id *string) ([]Crumb, error) {
	id = normalizeID(id)
	if id == nil {
		return []Crumb{}, nil
	}
	var chain []Crumb
	err := t.walkUp(ctx, *id, func(f *model.Folder) bool {
		chain = append(chain, Crumb{ID: f.ID, Name: f.Name})
		return false
	})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// BuildTree загружает все папки одним запросом и собирает лес.
// Сиблинги отсортированы по имени; папки с несуществующим родителем в дерево не попадают.
func (t *FolderTree) BuildTree(ctx context.Context) ([]*TreeNode, error) {
	all, err := t.folders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	byParent := make(map[string][]*TreeNode, len(all))
	for i := range all {
		f := &all[i]
		key := model.ParentKey(f.ParentID)
		byParent[key] = append(byParent[key], &TreeNode{
			ID:         f.ID,
			Name:       f.Name,
			Color:      f.Color,
			Icon:       f.Icon,
			MediaCount: f.MediaCount,
			Children:   []*TreeNode{},
		})
	}
	for _, group := range byParent {
		sortNodes(group)
	}

	roots := byParent[""]
	if roots == nil {
		roots = []*TreeNode{}
	}
	// BFS от корней: узлы внутри цикла недостижимы и не ломают сборку
	queue := append([]*TreeNode{}, roots...)
	attached := map[string]struct{}{}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if _, ok := attached[n.ID]; ok {
			continue
		}
		attached[n.ID] = struct{}{}
		if kids, ok := byParent[n.ID]; ok {
			n.Children = kids
			queue = append(queue, kids...)
		}
	}
	return roots, nil
}

func sortNodes(nodes []*TreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := strings.ToLower(nodes[i].Name), strings.ToLower(nodes[j].Name)
		if a != b {
			return a < b
		}
		return nodes[i].Name < nodes[j].Name
	})
}

// Contents возвращает папку, путь до неё, подпапки и медиа. nil — корень.
func (t *FolderTree) Contents(ctx context.Context, id *string) (*FolderContents, error) {
	id = normalizeID(id)
	out := &FolderContents{Breadcrumbs: []Crumb{}}
	filter := repo.MediaFilter{Root: true}
	if id != nil {
		f, err := t.getFolder(ctx, *id)
		if err != nil {
			return nil, err
		}
		crumbs, err := t.Breadcrumbs(ctx, id)
		if err != nil {
			return nil, err
		}
		out.Folder = f
		out.Breadcrumbs = crumbs
		filter = repo.MediaFilter{FolderID: id}
	}

	folders, err := t.folders.ListChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := t.media.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out.Folders = folders
	out.Media = items
	return out, nil
}

// CheckIntegrity проверяет всё дерево целиком в памяти.
func (t *FolderTree) CheckIntegrity(ctx context.Context) ([]IntegrityIssue, error) {
	all, err := t.folders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.Folder, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}

	issues := []IntegrityIssue{}
	names := map[string]string{}
	for i := range all {
		f := &all[i]

		key := model.ParentKey(f.ParentID) + "\x00" + f.Name
		if other, ok := names[key]; ok {
			issues = append(issues, IntegrityIssue{FolderID: f.ID, Kind: IssueDuplicateName,
				Detail: fmt.Sprintf("name %q also used by %s", f.Name, other)})
		} else {
			names[key] = f.ID
		}

		seen := map[string]struct{}{f.ID: {}}
		cur := f
		for cur.ParentID != nil {
			p, ok := byID[*cur.ParentID]
			if !ok {
				issues = append(issues, IntegrityIssue{FolderID: f.ID, Kind: IssueDanglingParent,
					Detail: fmt.Sprintf("parent %s of %s does not exist", *cur.ParentID, cur.ID)})
				break
			}
			if _, loop := seen[p.ID]; loop || len(seen) > len(all) {
				issues = append(issues, IntegrityIssue{FolderID: f.ID, Kind: IssueCycle,
					Detail: fmt.Sprintf("ancestor chain revisits %s", p.ID)})
				break
			}
			seen[p.ID] = struct{}{}
			cur = p
		}
	}
	return issues, nil
}

// RecomputeAllStats пересчитывает агрегаты всех папок. Возвращает число обработанных.
func (t *FolderTree) RecomputeAllStats(ctx context.Context) (int, error) {
	all, err := t.folders.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	for _, f := range all {
		if _, err := t.FolderStats(ctx, f.ID); err != nil {
			return 0, fmt.Errorf("folder %q: %w", f.ID, err)
		}
	}
	return len(all), nil
}
