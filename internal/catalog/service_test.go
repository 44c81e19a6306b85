package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	categories []Category
	miniatures []Miniature

	listCatErr  error
	listMiniErr error

	listCatCalls  int
	listMiniCalls int

	insertedMiniature *MiniatureInput
}

func (f *fakeStore) ListCategories(ctx context.Context) ([]Category, error) {
	f.listCatCalls++
	if f.listCatErr != nil {
		return nil, f.listCatErr
	}
	return f.categories, nil
}

func (f *fakeStore) ListMiniatures(ctx context.Context) ([]Miniature, error) {
	f.listMiniCalls++
	if f.listMiniErr != nil {
		return nil, f.listMiniErr
	}
	return f.miniatures, nil
}

func (f *fakeStore) InsertCategory(ctx context.Context, name string) error {
	f.categories = append(f.categories, Category{ID: "new", Name: name, CreatedAt: time.Now()})
	return nil
}

func (f *fakeStore) UpdateCategory(ctx context.Context, id, name string) error { return nil }

func (f *fakeStore) DeleteCategory(ctx context.Context, id string) error {
	// mimic the FK: category gone, miniature references detached
	f.categories = nil
	for i := range f.miniatures {
		f.miniatures[i].CategoryID = nil
	}
	return nil
}

func (f *fakeStore) InsertMiniature(ctx context.Context, in MiniatureInput) error {
	f.insertedMiniature = &in
	return nil
}

func (f *fakeStore) UpdateMiniature(ctx context.Context, id string, in MiniatureInput) error {
	return nil
}

func (f *fakeStore) DeleteMiniature(ctx context.Context, id string) error { return nil }

type fakeIngester struct{ calls []string }

func (f *fakeIngester) Ingest(ctx context.Context, image string) (string, error) {
	f.calls = append(f.calls, image)
	if image == "" {
		return "", nil
	}
	return "https://cdn.example/" + image, nil
}

func TestMirrorReplacedWholesale(t *testing.T) {
	catID := "cat-1"
	store := &fakeStore{
		categories: []Category{{ID: catID, Name: "Superesportivos"}},
		miniatures: []Miniature{{ID: "1", Name: "Ferrari F40 1987", Stock: 1, PriceCents: 29990, CategoryID: &catID}},
	}
	svc := NewService(store, &fakeIngester{}, zerolog.Nop())

	require.NoError(t, svc.Refresh(context.Background()))
	assert.Len(t, svc.Categories(), 1)
	assert.Len(t, svc.Miniatures(), 1)

	store.categories = []Category{{ID: "cat-1"}, {ID: "cat-2"}}
	require.NoError(t, svc.Refresh(context.Background()))
	assert.Len(t, svc.Categories(), 2, "mirror overwritten, not patched")
}

func TestMirrorStaysStaleOnFailedReload(t *testing.T) {
	store := &fakeStore{categories: []Category{{ID: "cat-1", Name: "Clássicos"}}}
	svc := NewService(store, &fakeIngester{}, zerolog.Nop())
	require.NoError(t, svc.Refresh(context.Background()))

	store.listCatErr = errors.New("gateway down")
	err := svc.Refresh(context.Background())
	require.Error(t, err)
	assert.Len(t, svc.Categories(), 1, "previous mirror survives a failed reload")
	assert.Equal(t, "Clássicos", svc.Categories()[0].Name)
}

func TestAddCategoryValidatesAndReloads(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, &fakeIngester{}, zerolog.Nop())

	err := svc.AddCategory(context.Background(), "   ")
	require.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, svc.AddCategory(context.Background(), "Muscle Cars"))
	cats := svc.Categories()
	require.Len(t, cats, 1)
	assert.Equal(t, "Muscle Cars", cats[0].Name)
}

func TestDeleteCategoryDetachesMiniatures(t *testing.T) {
	catID := "cat-1"
	store := &fakeStore{
		categories: []Category{{ID: catID}},
		miniatures: []Miniature{{ID: "1", Name: "Ferrari F40 1987", CategoryID: &catID}},
	}
	svc := NewService(store, &fakeIngester{}, zerolog.Nop())
	require.NoError(t, svc.Refresh(context.Background()))

	miniListCalls := store.listMiniCalls
	require.NoError(t, svc.DeleteCategory(context.Background(), catID))

	assert.Greater(t, store.listMiniCalls, miniListCalls, "miniatures reloaded after category delete")
	minis := svc.Miniatures()
	require.Len(t, minis, 1, "miniature survives its category")
	assert.Nil(t, minis[0].CategoryID, "category reference detached")
}

func TestAddMiniatureIngestsImage(t *testing.T) {
	store := &fakeStore{}
	images := &fakeIngester{}
	svc := NewService(store, images, zerolog.Nop())

	err := svc.AddMiniature(context.Background(), MiniatureInput{Name: "", PriceCents: 100})
	require.ErrorIs(t, err, ErrInvalidInput)

	err = svc.AddMiniature(context.Background(), MiniatureInput{Name: "Porsche 911 Turbo", PriceCents: -1})
	require.ErrorIs(t, err, ErrInvalidInput)

	err = svc.AddMiniature(context.Background(), MiniatureInput{Name: "Porsche 911 Turbo", Stock: -2})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, images.calls, "invalid input never reaches the gateway")

	require.NoError(t, svc.AddMiniature(context.Background(), MiniatureInput{
		Name: "Porsche 911 Turbo", Image: "img.png", PriceCents: 27990, Stock: 3, Scale: "1:18",
	}))
	require.NotNil(t, store.insertedMiniature)
	assert.Equal(t, "https://cdn.example/img.png", store.insertedMiniature.Image)
}
