package repository

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/viaflix/performance-dashboard-api/internal/domain"
	"github.com/viaflix/performance-dashboard-api/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrUserNotFound é retornado quando o username não existe no arquivo
var ErrUserNotFound = errors.New("usuário não encontrado")

// ErrUserAlreadyExists é retornado ao tentar criar um username já cadastrado
var ErrUserAlreadyExists = errors.New("usuário já cadastrado")

// UserRepository abstrai o armazenamento de usuários
type UserRepository interface {
	FindByUsername(username string) (*domain.User, error)
	List() ([]*domain.User, error)
	Create(user *domain.User) error
	Update(user *domain.User) error
	Delete(username string) error
	UpdatePassword(username, passwordHash string) error
}

// fileUserRepository guarda os usuários em um arquivo JSON plano
// (username -> dados), herdado do painel administrativo original.
// Todo o arquivo é reescrito a cada mutação, sob mutex.
type fileUserRepository struct {
	mu   sync.Mutex
	path string
}

func NewFileUserRepository(path string) (UserRepository, error) {
	repo := &fileUserRepository{path: path}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.L.WithField("path", path).Info("Arquivo de usuários não encontrado; criando vazio")
		if err := repo.write(map[string]*domain.User{}); err != nil {
			return nil, err
		}
	}

	return repo, nil
}

func (r *fileUserRepository) FindByUsername(username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.read()
	if err != nil {
		return nil, err
	}

	user, ok := users[username]
	if !ok || user.DeletedAt != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *fileUserRepository) List() ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.read()
	if err != nil {
		return nil, err
	}

	result := make([]*domain.User, 0, len(users))
	for _, user := range users {
		if user.DeletedAt != nil {
			continue
		}
		result = append(result, user)
	}
	return result, nil
}

func (r *fileUserRepository) Create(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.read()
	if err != nil {
		return err
	}

	if existing, ok := users[user.Username]; ok && existing.DeletedAt == nil {
		return ErrUserAlreadyExists
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.DeletedAt = nil
	users[user.Username] = user

	return r.write(users)
}

func (r *fileUserRepository) Update(user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.read()
	if err != nil {
		return err
	}

	existing, ok := users[user.Username]
	if !ok || existing.DeletedAt != nil {
		return ErrUserNotFound
	}

	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now()
	users[user.Username] = user

	return r.write(users)
}

// Delete marca o usuário como removido sem perder o histórico no arquivo
func (r *fileUserRepository) Delete(username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.read()
	if err != nil {
		return err
	}

	user, ok := users[username]
	if !ok || user.DeletedAt != nil {
		return ErrUserNotFound
	}

	now := time.Now()
	user.DeletedAt = &now
	user.Active = false
	user.UpdatedAt = now

	return r.write(users)
}

func (r *fileUserRepository) UpdatePassword(username, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.read()
	if err != nil {
		return err
	}

	user, ok := users[username]
	if !ok || user.DeletedAt != nil {
		return ErrUserNotFound
	}

	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now()

	return r.write(users)
}

func (r *fileUserRepository) read() (map[string]*domain.User, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao ler o arquivo de usuários")
	}

	users := map[string]*domain.User{}
	if len(data) == 0 {
		return users, nil
	}

	if err := json.Unmarshal(data, &users); err != nil {
		return nil, errors.Wrap(err, "erro ao decodificar o arquivo de usuários")
	}
	return users, nil
}

// write reescreve o arquivo inteiro de forma atômica (arquivo temporário +
// rename) para nunca deixar um JSON truncado em disco
func (r *fileUserRepository) write(users map[string]*domain.User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return errors.Wrap(err, "erro ao codificar o arquivo de usuários")
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".usuarios-*.json")
	if err != nil {
		return errors.Wrap(err, "erro ao criar arquivo temporário de usuários")
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "erro ao gravar o arquivo de usuários")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "erro ao fechar o arquivo de usuários")
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "erro ao substituir o arquivo de usuários")
	}
	return nil
}
