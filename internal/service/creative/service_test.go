package creative

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/adproofhq/adproof-backend/internal/config"
	"github.com/adproofhq/adproof-backend/internal/domain"
	"github.com/adproofhq/adproof-backend/pkg/ctxutil"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeCatalog struct {
	mu          sync.Mutex
	advertisers map[uuid.UUID]domain.Advertiser
	campaigns   map[uuid.UUID]domain.Campaign
	creatives   map[uuid.UUID]domain.Creative
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		advertisers: make(map[uuid.UUID]domain.Advertiser),
		campaigns:   make(map[uuid.UUID]domain.Campaign),
		creatives:   make(map[uuid.UUID]domain.Creative),
	}
}

func (f *fakeCatalog) CreateAdvertiser(_ context.Context, a domain.Advertiser) (domain.Advertiser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	f.advertisers[a.ID] = a
	return a, nil
}

func (f *fakeCatalog) ListAdvertisers(context.Context) ([]domain.Advertiser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Advertiser, 0, len(f.advertisers))
	for _, a := range f.advertisers {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeCatalog) CreateCampaign(_ context.Context, c domain.Campaign) (domain.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.advertisers[c.AdvertiserID]; !ok {
		return domain.Campaign{}, domain.ErrNotFound
	}
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	f.campaigns[c.ID] = c
	return c, nil
}

func (f *fakeCatalog) ListCampaigns(_ context.Context, advertiserID uuid.UUID) ([]domain.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Campaign
	for _, c := range f.campaigns {
		if c.AdvertiserID == advertiserID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCatalog) Create(_ context.Context, c domain.Creative) (domain.Creative, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.campaigns[c.CampaignID]; !ok {
		return domain.Creative{}, domain.ErrNotFound
	}
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	f.creatives[c.ID] = c
	return c, nil
}

func (f *fakeCatalog) GetByID(_ context.Context, id uuid.UUID) (*domain.Creative, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.creatives[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := c
	return &cp, nil
}

func (f *fakeCatalog) ListByCampaign(_ context.Context, campaignID uuid.UUID) ([]domain.Creative, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Creative
	for _, c := range f.creatives {
		if c.CampaignID == campaignID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCatalog) Update(_ context.Context, c domain.Creative) (*domain.Creative, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.creatives[c.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	c.UpdatedAt = time.Now()
	f.creatives[c.ID] = c
	cp := c
	return &cp, nil
}

type fakeBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: make(map[string][]byte)}
}

func (f *fakeBlobs) Put(_ context.Context, key string, r io.Reader) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return key, nil
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *fakeBlobs) URL(key string) string {
	return "http://localhost:8080/media/" + key
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestService(t *testing.T) (*Service, *fakeCatalog, *fakeBlobs) {
	t.Helper()
	catalog := newFakeCatalog()
	blobs := newFakeBlobs()
	svc := NewService(slog.Default(), catalog, blobs, config.BlobConfig{MaxUploadBytes: 64})
	return svc, catalog, blobs
}

func viewerCtx(email string) context.Context {
	return ctxutil.WithViewer(context.Background(), ctxutil.Viewer{Email: email, Name: "Test User"})
}

func seedCampaign(t *testing.T, svc *Service) domain.Campaign {
	t.Helper()
	adv, err := svc.CreateAdvertiser(context.Background(), AdvertiserInput{Name: "Acme Corp"})
	if err != nil {
		t.Fatalf("CreateAdvertiser() error = %v", err)
	}
	camp, err := svc.CreateCampaign(context.Background(), CampaignInput{AdvertiserID: adv.ID, Name: "Summer Sale"})
	if err != nil {
		t.Fatalf("CreateCampaign() error = %v", err)
	}
	return camp
}

func seedCreative(t *testing.T, svc *Service) domain.Creative {
	t.Helper()
	camp := seedCampaign(t, svc)
	c, err := svc.CreateCreative(viewerCtx("owner@example.com"), CreateCreativeInput{
		CampaignID: camp.ID,
		Name:       "Summer Sale 300x250",
		Platform:   domain.PlatformFacebook,
		AdCopy:     AdCopyInput{Headline: "50% off", PrimaryText: "Everything must go"},
	})
	if err != nil {
		t.Fatalf("CreateCreative() error = %v", err)
	}
	return c
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestCreateAdvertiser_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateAdvertiser(context.Background(), AdvertiserInput{Name: "  "})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("blank name: error = %v, want ErrValidation", err)
	}

	_, err = svc.CreateAdvertiser(context.Background(), AdvertiserInput{Name: "Acme", ContactEmail: "not-an-email"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("bad email: error = %v, want ErrValidation", err)
	}
}

func TestCreateCampaign_DateOrder(t *testing.T) {
	svc, _, _ := newTestService(t)
	adv, _ := svc.CreateAdvertiser(context.Background(), AdvertiserInput{Name: "Acme"})

	start := time.Now()
	end := start.Add(-24 * time.Hour)
	_, err := svc.CreateCampaign(context.Background(), CampaignInput{
		AdvertiserID: adv.ID, Name: "Backwards", StartDate: &start, EndDate: &end,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestCreateCreative_Success(t *testing.T) {
	svc, _, _ := newTestService(t)
	camp := seedCampaign(t, svc)

	c, err := svc.CreateCreative(viewerCtx("owner@example.com"), CreateCreativeInput{
		CampaignID: camp.ID,
		Name:       "  Summer Sale 300x250  ",
		Platform:   domain.PlatformInstagram,
		AdCopy:     AdCopyInput{Headline: "50% off"},
	})
	if err != nil {
		t.Fatalf("CreateCreative() error = %v", err)
	}
	if c.Status != domain.CreativeStatusDraft {
		t.Errorf("Status = %s, want DRAFT", c.Status)
	}
	if c.OwnerEmail != "owner@example.com" {
		t.Errorf("OwnerEmail = %q", c.OwnerEmail)
	}
	if c.Name != "Summer Sale 300x250" {
		t.Errorf("Name = %q, want trimmed", c.Name)
	}
}

func TestCreateCreative_RequiresViewer(t *testing.T) {
	svc, _, _ := newTestService(t)
	camp := seedCampaign(t, svc)

	_, err := svc.CreateCreative(context.Background(), CreateCreativeInput{
		CampaignID: camp.ID, Name: "X", Platform: domain.PlatformFacebook,
	})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestCreateCreative_InvalidPlatform(t *testing.T) {
	svc, _, _ := newTestService(t)
	camp := seedCampaign(t, svc)

	_, err := svc.CreateCreative(viewerCtx("owner@example.com"), CreateCreativeInput{
		CampaignID: camp.ID, Name: "X", Platform: domain.Platform("TIKTOK"),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestUpdateCreative_OnlyDraft(t *testing.T) {
	svc, catalog, _ := newTestService(t)
	c := seedCreative(t, svc)

	name := "Renamed"
	updated, err := svc.UpdateCreative(context.Background(), UpdateCreativeInput{CreativeID: c.ID, Name: &name})
	if err != nil {
		t.Fatalf("UpdateCreative() error = %v", err)
	}
	if updated.Name != "Renamed" {
		t.Errorf("Name = %q", updated.Name)
	}

	// Lock it into approval and retry.
	catalog.mu.Lock()
	cc := catalog.creatives[c.ID]
	cc.Status = domain.CreativeStatusInApproval
	catalog.creatives[c.ID] = cc
	catalog.mu.Unlock()

	_, err = svc.UpdateCreative(context.Background(), UpdateCreativeInput{CreativeID: c.ID, Name: &name})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("in-approval update: error = %v, want ErrValidation", err)
	}
}

func TestUploadCreativeImage_Success(t *testing.T) {
	svc, _, blobs := newTestService(t)
	c := seedCreative(t, svc)

	updated, err := svc.UploadCreativeImage(context.Background(), UploadImageInput{
		CreativeID: c.ID,
		Filename:   "banner.png",
		Body:       bytes.NewReader([]byte("png-bytes")),
	})
	if err != nil {
		t.Fatalf("UploadCreativeImage() error = %v", err)
	}
	if updated.ImageKey == nil {
		t.Fatal("ImageKey is nil")
	}
	if !strings.HasSuffix(*updated.ImageKey, ".png") {
		t.Errorf("ImageKey = %q, want .png suffix", *updated.ImageKey)
	}
	if strings.Contains(*updated.ImageKey, "://") {
		t.Errorf("ImageKey = %q, want a key, not a URL", *updated.ImageKey)
	}
	if updated.ImageURL == nil || *updated.ImageURL != "http://localhost:8080/media/"+*updated.ImageKey {
		t.Errorf("ImageURL = %v, want base URL plus key exactly once", updated.ImageURL)
	}
	if _, ok := blobs.objects[*updated.ImageKey]; !ok {
		t.Error("blob store does not hold the uploaded key")
	}
}

func TestUploadCreativeImage_ReplacesOld(t *testing.T) {
	svc, _, blobs := newTestService(t)
	c := seedCreative(t, svc)

	first, err := svc.UploadCreativeImage(context.Background(), UploadImageInput{
		CreativeID: c.ID, Filename: "a.png", Body: bytes.NewReader([]byte("one")),
	})
	if err != nil {
		t.Fatalf("first upload error = %v", err)
	}
	second, err := svc.UploadCreativeImage(context.Background(), UploadImageInput{
		CreativeID: c.ID, Filename: "b.jpg", Body: bytes.NewReader([]byte("two")),
	})
	if err != nil {
		t.Fatalf("second upload error = %v", err)
	}

	if _, ok := blobs.objects[*first.ImageKey]; ok {
		t.Error("replaced image still present in blob store")
	}
	if _, ok := blobs.objects[*second.ImageKey]; !ok {
		t.Error("new image missing from blob store")
	}
}

func TestUploadCreativeImage_TooLarge(t *testing.T) {
	svc, _, blobs := newTestService(t)
	c := seedCreative(t, svc)

	big := bytes.Repeat([]byte("x"), 65) // cap is 64 in newTestService
	_, err := svc.UploadCreativeImage(context.Background(), UploadImageInput{
		CreativeID: c.ID, Filename: "huge.png", Body: bytes.NewReader(big),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	if len(blobs.objects) != 0 {
		t.Errorf("blob store holds %d objects after rejected upload, want 0", len(blobs.objects))
	}
}

func TestUploadCreativeImage_UnsupportedType(t *testing.T) {
	svc, _, _ := newTestService(t)
	c := seedCreative(t, svc)

	_, err := svc.UploadCreativeImage(context.Background(), UploadImageInput{
		CreativeID: c.ID, Filename: "payload.exe", Body: bytes.NewReader([]byte("x")),
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestListCreatives_FillsImageURL(t *testing.T) {
	svc, _, _ := newTestService(t)
	c := seedCreative(t, svc)

	if _, err := svc.UploadCreativeImage(context.Background(), UploadImageInput{
		CreativeID: c.ID, Filename: "a.png", Body: bytes.NewReader([]byte("one")),
	}); err != nil {
		t.Fatalf("upload error = %v", err)
	}

	list, err := svc.ListCreatives(context.Background(), c.CampaignID)
	if err != nil {
		t.Fatalf("ListCreatives() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len = %d, want 1", len(list))
	}
	if list[0].ImageURL == nil {
		t.Error("ImageURL not filled")
	}
}
