package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viaflix/performance-dashboard-api/internal/domain"
)

func newTestUserRepo(t *testing.T) UserRepository {
	t.Helper()

	repo, err := NewFileUserRepository(filepath.Join(t.TempDir(), "usuarios.json"))
	require.NoError(t, err)
	return repo
}

func TestFileUserRepository_CreateAndFind(t *testing.T) {
	repo := newTestUserRepo(t)

	err := repo.Create(&domain.User{
		Username:     "maria",
		Name:         "Maria",
		PasswordHash: "hash",
		Active:       true,
		RoleID:       1,
	})
	require.NoError(t, err)

	user, err := repo.FindByUsername("maria")
	require.NoError(t, err)
	assert.Equal(t, "Maria", user.Name)
	assert.Equal(t, 1, user.RoleID)
	assert.True(t, user.Active)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestFileUserRepository_CreateDuplicado(t *testing.T) {
	repo := newTestUserRepo(t)

	require.NoError(t, repo.Create(&domain.User{Username: "maria", Name: "Maria", PasswordHash: "hash"}))

	err := repo.Create(&domain.User{Username: "maria", Name: "Outra Maria", PasswordHash: "hash2"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestFileUserRepository_FindInexistente(t *testing.T) {
	repo := newTestUserRepo(t)

	_, err := repo.FindByUsername("ninguem")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFileUserRepository_Update(t *testing.T) {
	repo := newTestUserRepo(t)

	require.NoError(t, repo.Create(&domain.User{Username: "maria", Name: "Maria", PasswordHash: "hash", Active: true}))

	user, err := repo.FindByUsername("maria")
	require.NoError(t, err)

	user.Name = "Maria Silva"
	user.Active = false
	require.NoError(t, repo.Update(user))

	updated, err := repo.FindByUsername("maria")
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", updated.Name)
	assert.False(t, updated.Active)
}

func TestFileUserRepository_Delete(t *testing.T) {
	repo := newTestUserRepo(t)

	require.NoError(t, repo.Create(&domain.User{Username: "maria", Name: "Maria", PasswordHash: "hash"}))
	require.NoError(t, repo.Delete("maria"))

	_, err := repo.FindByUsername("maria")
	assert.ErrorIs(t, err, ErrUserNotFound)

	// Remover de novo também é not found
	assert.ErrorIs(t, repo.Delete("maria"), ErrUserNotFound)
}

func TestFileUserRepository_List(t *testing.T) {
	repo := newTestUserRepo(t)

	require.NoError(t, repo.Create(&domain.User{Username: "maria", Name: "Maria", PasswordHash: "hash"}))
	require.NoError(t, repo.Create(&domain.User{Username: "joao", Name: "João", PasswordHash: "hash"}))
	require.NoError(t, repo.Delete("joao"))

	users, err := repo.List()
	require.NoError(t, err)
	require.Len(t, users, 1, "usuários removidos ficam fora da listagem")
	assert.Equal(t, "maria", users[0].Username)
}

func TestFileUserRepository_UpdatePassword(t *testing.T) {
	repo := newTestUserRepo(t)

	require.NoError(t, repo.Create(&domain.User{Username: "maria", Name: "Maria", PasswordHash: "antigo"}))
	require.NoError(t, repo.UpdatePassword("maria", "novo"))

	user, err := repo.FindByUsername("maria")
	require.NoError(t, err)
	assert.Equal(t, "novo", user.PasswordHash)
}

func TestFileUserRepository_PersisteEntreInstancias(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usuarios.json")

	first, err := NewFileUserRepository(path)
	require.NoError(t, err)
	require.NoError(t, first.Create(&domain.User{Username: "maria", Name: "Maria", PasswordHash: "hash"}))

	second, err := NewFileUserRepository(path)
	require.NoError(t, err)

	user, err := second.FindByUsername("maria")
	require.NoError(t, err)
	assert.Equal(t, "Maria", user.Name)
}
