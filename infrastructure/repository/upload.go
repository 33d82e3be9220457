package repository

import (
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/viaflix/performance-dashboard-api/infrastructure/spreadsheet"
	"github.com/viaflix/performance-dashboard-api/pkg/utils"
)

// ErrUploadNotFound é retornado quando o ID de upload não existe
var ErrUploadNotFound = errors.New("planilha não encontrada")

// Upload é uma planilha enviada e já aberta, pronta para processamento
type Upload struct {
	ID         string    `json:"id"`
	Owner      string    `json:"owner"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`

	Workbook spreadsheet.Workbook `json:"-"`
}

// UploadRepository guarda as planilhas abertas. Cada usuário mantém no máximo
// um upload ativo: o novo substitui o anterior.
type UploadRepository interface {
	Save(owner, filename string, workbook spreadsheet.Workbook) (upload *Upload, replacedID string, err error)
	FindByID(id string) (*Upload, error)
	FindByOwner(owner string) (*Upload, error)
	Delete(id string) error
}

type memoryUploadRepository struct {
	mu      sync.RWMutex
	byID    map[string]*Upload
	byOwner map[string]string
}

func NewMemoryUploadRepository() UploadRepository {
	return &memoryUploadRepository{
		byID:    make(map[string]*Upload),
		byOwner: make(map[string]string),
	}
}

// Save registra a planilha e devolve o ID do upload anterior do mesmo dono,
// se houver, para que o chamador invalide os frames em cache dele
func (r *memoryUploadRepository) Save(owner, filename string, workbook spreadsheet.Workbook) (*Upload, string, error) {
	id, err := utils.GenerateID()
	if err != nil {
		return nil, "", errors.Wrap(err, "erro ao gerar o ID do upload")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	replacedID := ""
	if previous, ok := r.byOwner[owner]; ok {
		replacedID = previous
		closeWorkbook(r.byID[previous])
		delete(r.byID, previous)
	}

	upload := &Upload{
		ID:         id,
		Owner:      owner,
		Filename:   filename,
		UploadedAt: time.Now(),
		Workbook:   workbook,
	}

	r.byID[id] = upload
	r.byOwner[owner] = id

	return upload, replacedID, nil
}

func (r *memoryUploadRepository) FindByID(id string) (*Upload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	upload, ok := r.byID[id]
	if !ok {
		return nil, ErrUploadNotFound
	}
	return upload, nil
}

func (r *memoryUploadRepository) FindByOwner(owner string) (*Upload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byOwner[owner]
	if !ok {
		return nil, ErrUploadNotFound
	}
	return r.byID[id], nil
}

func (r *memoryUploadRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	upload, ok := r.byID[id]
	if !ok {
		return ErrUploadNotFound
	}

	closeWorkbook(upload)
	delete(r.byID, id)
	delete(r.byOwner, upload.Owner)
	return nil
}

// closeWorkbook libera o arquivo de uma planilha descartada, quando o formato
// subjacente mantém recursos abertos
func closeWorkbook(upload *Upload) {
	if upload == nil || upload.Workbook == nil {
		return
	}
	if closer, ok := upload.Workbook.(io.Closer); ok {
		_ = closer.Close()
	}
}
