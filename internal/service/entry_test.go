package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photojournal/internal/logging"
	"photojournal/internal/model"
	"photojournal/internal/repository"
	repoMocks "photojournal/internal/repository/mocks"
	"photojournal/internal/storage"
	storeMocks "photojournal/internal/storage/mocks"
)

func testEntry(id string) *model.Entry {
	return &model.Entry{ID: id, Image: "photos/" + id + ".jpg", Location: "Cafe X", Timestamp: time.Unix(0, 0).UTC()}
}

func newEntryService(repo repository.EntryRepository, photos storage.Storage) EntryService {
	return NewEntryService(repo, photos, logging.New(io.Discard, time.UTC))
}

func TestEntryService_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setupMocks func(mRepo *repoMocks.MockEntryRepository)
		wantTotal  int
		wantErr    bool
	}{
		{
			name: "entries newest first",
			setupMocks: func(mRepo *repoMocks.MockEntryRepository) {
				mRepo.On("List", ctx).Return([]model.Entry{*testEntry("b"), *testEntry("a")}, nil)
			},
			wantTotal: 2,
		},
		{
			name: "nil list becomes empty",
			setupMocks: func(mRepo *repoMocks.MockEntryRepository) {
				mRepo.On("List", ctx).Return(nil, nil)
			},
			wantTotal: 0,
		},
		{
			name: "repository error",
			setupMocks: func(mRepo *repoMocks.MockEntryRepository) {
				mRepo.On("List", ctx).Return(nil, errors.New("db fail"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockEntryRepository)
			tt.setupMocks(mRepo)

			res, err := newEntryService(mRepo, nil).List(ctx)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, res.Items)
			assert.Equal(t, tt.wantTotal, res.Total)
			assert.Len(t, res.Items, tt.wantTotal)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestEntryService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		setupMocks func(mRepo *repoMocks.MockEntryRepository)
		wantErr    error
	}{
		{
			name: "found",
			id:   "a",
			setupMocks: func(mRepo *repoMocks.MockEntryRepository) {
				mRepo.On("FindByID", ctx, "a").Return(testEntry("a"), nil)
			},
		},
		{
			name:       "empty id",
			setupMocks: func(mRepo *repoMocks.MockEntryRepository) {},
			wantErr:    ErrIDRequired,
		},
		{
			name: "not found",
			id:   "zz",
			setupMocks: func(mRepo *repoMocks.MockEntryRepository) {
				mRepo.On("FindByID", ctx, "zz").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockEntryRepository)
			tt.setupMocks(mRepo)

			e, err := newEntryService(mRepo, nil).Get(ctx, tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, e)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, e.ID)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestEntryService_OpenImage(t *testing.T) {
	ctx := context.Background()
	photos := storage.NewMemory()
	_, err := photos.Put(ctx, "photos/a.jpg", strings.NewReader("img"), storage.PutObjectOptions{ContentType: "image/jpeg"})
	require.NoError(t, err)

	mRepo := new(repoMocks.MockEntryRepository)
	mRepo.On("FindByID", ctx, "a").Return(testEntry("a"), nil)
	mRepo.On("FindByID", ctx, "b").Return(testEntry("b"), nil)
	svc := newEntryService(mRepo, photos)

	rc, info, err := svc.OpenImage(ctx, "a")
	require.NoError(t, err)
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	assert.Equal(t, "img", string(b))
	assert.Equal(t, "image/jpeg", info.ContentType)

	_, _, err = svc.OpenImage(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEntryService_ImageURL(t *testing.T) {
	ctx := context.Background()
	ttl := 15 * time.Minute

	tests := []struct {
		name       string
		id         string
		setupMocks func(mRepo *repoMocks.MockEntryRepository, mPhotos *storeMocks.MockStorage)
		want       string
		wantErr    error
	}{
		{
			name: "presigned",
			id:   "a",
			setupMocks: func(mRepo *repoMocks.MockEntryRepository, mPhotos *storeMocks.MockStorage) {
				mRepo.On("FindByID", ctx, "a").Return(testEntry("a"), nil)
				mPhotos.On("PresignGet", ctx, "photos/a.jpg", ttl).Return("https://objects.example/journal/photos/a.jpg?X-Amz-Signature=x", nil)
			},
			want: "https://objects.example/journal/photos/a.jpg?X-Amz-Signature=x",
		},
		{
			name: "store without links",
			id:   "a",
			setupMocks: func(mRepo *repoMocks.MockEntryRepository, mPhotos *storeMocks.MockStorage) {
				mRepo.On("FindByID", ctx, "a").Return(testEntry("a"), nil)
				mPhotos.On("PresignGet", ctx, "photos/a.jpg", ttl).Return("", storage.ErrPresignUnsupported)
			},
			wantErr: ErrDirectLinkUnavailable,
		},
		{
			name: "unknown entry",
			id:   "zz",
			setupMocks: func(mRepo *repoMocks.MockEntryRepository, mPhotos *storeMocks.MockStorage) {
				mRepo.On("FindByID", ctx, "zz").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockEntryRepository)
			mPhotos := new(storeMocks.MockStorage)
			tt.setupMocks(mRepo, mPhotos)

			u, err := newEntryService(mRepo, mPhotos).ImageURL(ctx, tt.id, ttl)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, u)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, u)
			}
			mRepo.AssertExpectations(t)
			mPhotos.AssertExpectations(t)
		})
	}

	t.Run("presign failure", func(t *testing.T) {
		mRepo := new(repoMocks.MockEntryRepository)
		mPhotos := new(storeMocks.MockStorage)
		mRepo.On("FindByID", ctx, "a").Return(testEntry("a"), nil)
		mPhotos.On("PresignGet", ctx, "photos/a.jpg", ttl).Return("", errors.New("bad credentials"))

		_, err := newEntryService(mRepo, mPhotos).ImageURL(ctx, "a", ttl)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "presign photo: bad credentials")
		assert.NotErrorIs(t, err, ErrDirectLinkUnavailable)
	})
}

func TestEntryService_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		setupMocks func(mRepo *repoMocks.MockEntryRepository, mStore *storeMocks.MockStorage)
		wantErr    error
		wantErrMsg string
	}{
		{
			name: "deletes record then photo",
			id:   "a",
			setupMocks: func(mRepo *repoMocks.MockEntryRepository, mStore *storeMocks.MockStorage) {
				mRepo.On("FindByID", ctx, "a").Return(testEntry("a"), nil)
				mRepo.On("DeleteByID", ctx, "a").Return(nil)
				mStore.On("Delete", ctx, "photos/a.jpg").Return(nil)
			},
		},
		{
			name: "photo removal failure is ignored",
			id:   "a",
			setupMocks: func(mRepo *repoMocks.MockEntryRepository, mStore *storeMocks.MockStorage) {
				mRepo.On("FindByID", ctx, "a").Return(testEntry("a"), nil)
				mRepo.On("DeleteByID", ctx, "a").Return(nil)
				mStore.On("Delete", ctx, "photos/a.jpg").Return(errors.New("s3 down"))
			},
		},
		{
			name: "missing entry is a no-op",
			id:   "zz",
			setupMocks: func(mRepo *repoMocks.MockEntryRepository, mStore *storeMocks.MockStorage) {
				mRepo.On("FindByID", ctx, "zz").Return(nil, repository.ErrNotFound)
				mRepo.On("DeleteByID", ctx, "zz").Return(nil)
			},
		},
		{
			name: "record removal failure keeps photo",
			id:   "a",
			setupMocks: func(mRepo *repoMocks.MockEntryRepository, mStore *storeMocks.MockStorage) {
				mRepo.On("FindByID", ctx, "a").Return(testEntry("a"), nil)
				mRepo.On("DeleteByID", ctx, "a").Return(errors.New("write entries: boom"))
			},
			wantErrMsg: "write entries: boom",
		},
		{
			name:       "empty id",
			setupMocks: func(mRepo *repoMocks.MockEntryRepository, mStore *storeMocks.MockStorage) {},
			wantErr:    ErrIDRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockEntryRepository)
			mStore := new(storeMocks.MockStorage)
			tt.setupMocks(mRepo, mStore)

			err := newEntryService(mRepo, mStore).Delete(ctx, tt.id)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrMsg != "":
				assert.ErrorContains(t, err, tt.wantErrMsg)
			default:
				assert.NoError(t, err)
			}
			mRepo.AssertExpectations(t)
			mStore.AssertExpectations(t)
		})
	}
}

func TestEntryService_Clear(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockEntryRepository)
	mStore := new(storeMocks.MockStorage)
	mRepo.On("List", ctx).Return([]model.Entry{*testEntry("b"), *testEntry("a")}, nil)
	mRepo.On("Clear", ctx).Return(nil)
	mStore.On("Delete", ctx, "photos/b.jpg").Return(nil)
	mStore.On("Delete", ctx, "photos/a.jpg").Return(nil)

	require.NoError(t, newEntryService(mRepo, mStore).Clear(ctx))
	mRepo.AssertExpectations(t)
	mStore.AssertExpectations(t)
}

func TestEntryService_ClearFailureKeepsPhotos(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockEntryRepository)
	mStore := new(storeMocks.MockStorage)
	mRepo.On("List", ctx).Return([]model.Entry{*testEntry("a")}, nil)
	mRepo.On("Clear", ctx).Return(errors.New("remove entries: boom"))

	assert.Error(t, newEntryService(mRepo, mStore).Clear(ctx))
	mStore.AssertNotCalled(t, "Delete")
}
