package authenticating

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viaflix/performance-dashboard-api/infrastructure/repository"
	"github.com/viaflix/performance-dashboard-api/internal/config"
	"github.com/viaflix/performance-dashboard-api/internal/domain"
)

func newTestAuthenticator(t *testing.T) Authenticator {
	t.Helper()

	repo, err := repository.NewFileUserRepository(filepath.Join(t.TempDir(), "usuarios.json"))
	require.NoError(t, err)

	return NewService(repo, &config.Config{SecretKey: "segredo-de-teste"})
}

func createActiveUser(t *testing.T, service Authenticator, username, password string, roleID int) {
	t.Helper()

	_, err := service.CreateUser(&domain.User{
		Username:     username,
		Name:         "Usuário de Teste",
		PasswordHash: password,
		Active:       true,
		RoleID:       roleID,
	})
	require.NoError(t, err)
}

func TestService_LoginUser(t *testing.T) {
	service := newTestAuthenticator(t)
	createActiveUser(t, service, "maria", "Senha@123", 1)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{
			name:     "Login com credenciais válidas",
			username: "maria",
			password: "Senha@123",
		},
		{
			name:     "Username com maiúsculas e espaços é normalizado",
			username: "  MARIA ",
			password: "Senha@123",
		},
		{
			name:     "Senha incorreta",
			username: "maria",
			password: "errada",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "Usuário inexistente",
			username: "ninguem",
			password: "Senha@123",
			wantErr:  ErrUserNotFound,
		},
		{
			name:     "Campos vazios",
			username: "",
			password: "",
			wantErr:  ErrMissingRequiredData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := service.LoginUser(tt.username, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				return
			}

			require.NoError(t, err)
			require.NotEmpty(t, token)

			claims, err := service.ValidateToken(token)
			require.NoError(t, err)
			assert.Equal(t, "maria", claims.Username)
			assert.Equal(t, 1, claims.UserRoleID)
			assert.True(t, claims.UserActive)
		})
	}
}

func TestService_LoginUser_UsuarioDesativado(t *testing.T) {
	service := newTestAuthenticator(t)

	_, err := service.CreateUser(&domain.User{
		Username:     "inativo",
		Name:         "Usuário Inativo",
		PasswordHash: "Senha@123",
		Active:       false,
		RoleID:       3,
	})
	require.NoError(t, err)

	_, err = service.LoginUser("inativo", "Senha@123")
	assert.ErrorIs(t, err, ErrUserDisabled)
}

func TestService_CreateUser(t *testing.T) {
	service := newTestAuthenticator(t)

	user, err := service.CreateUser(&domain.User{
		Username:     "Nova Pessoa",
		Name:         "Nova Pessoa",
		PasswordHash: "Senha@123",
		Active:       true,
	})
	require.NoError(t, err)

	assert.Equal(t, "novapessoa", user.Username, "username é normalizado")
	assert.Equal(t, 3, user.RoleID, "role padrão é cliente")
	assert.NotEqual(t, "Senha@123", user.PasswordHash, "senha é armazenada com hash")

	// Username duplicado
	_, err = service.CreateUser(&domain.User{
		Username:     "novapessoa",
		Name:         "Outra Pessoa",
		PasswordHash: "Senha@456",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	// Campos obrigatórios ausentes
	_, err = service.CreateUser(&domain.User{Username: "semsenha", Name: "Sem Senha"})
	assert.ErrorIs(t, err, ErrMissingRequiredData)
}

func TestService_UpdateUser(t *testing.T) {
	service := newTestAuthenticator(t)
	createActiveUser(t, service, "maria", "Senha@123", 3)

	newName := "Maria Silva"
	newRole := 2
	inactive := false

	err := service.UpdateUser(&domain.UpdateUserRequest{
		Username: "maria",
		Name:     &newName,
		RoleID:   &newRole,
		Active:   &inactive,
	})
	require.NoError(t, err)

	user, err := service.GetUserProfile("maria")
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", user.Name)
	assert.Equal(t, 2, user.RoleID)
	assert.False(t, user.Active)
	assert.Empty(t, user.PasswordHash, "perfil não expõe o hash da senha")

	err = service.UpdateUser(&domain.UpdateUserRequest{Username: "ninguem", Name: &newName})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_DeleteUser(t *testing.T) {
	service := newTestAuthenticator(t)
	createActiveUser(t, service, "maria", "Senha@123", 3)

	require.NoError(t, service.DeleteUser("maria"))

	_, err := service.LoginUser("maria", "Senha@123")
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, service.DeleteUser("maria"), ErrUserNotFound)
}

func TestService_ValidateToken_TokenInvalido(t *testing.T) {
	service := newTestAuthenticator(t)

	_, err := service.ValidateToken("token-invalido")
	assert.Error(t, err)
}

func TestService_ChangePassword(t *testing.T) {
	service := newTestAuthenticator(t)
	createActiveUser(t, service, "maria", "Senha@123", 3)

	tests := []struct {
		name            string
		currentPassword string
		newPassword     string
		wantErr         bool
	}{
		{
			name:            "Senha atual incorreta",
			currentPassword: "errada",
			newPassword:     "Outra@Senha1",
			wantErr:         true,
		},
		{
			name:            "Nova senha igual à atual",
			currentPassword: "Senha@123",
			newPassword:     "Senha@123",
			wantErr:         true,
		},
		{
			name:            "Nova senha fraca",
			currentPassword: "Senha@123",
			newPassword:     "fraca",
			wantErr:         true,
		},
		{
			name:            "Troca válida",
			currentPassword: "Senha@123",
			newPassword:     "Outra@Senha1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.ChangePassword("maria", tt.currentPassword, tt.newPassword)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			_, err = service.LoginUser("maria", tt.newPassword)
			assert.NoError(t, err)
		})
	}
}

func TestService_ValidatePasswordStrength(t *testing.T) {
	service := newTestAuthenticator(t)

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "Senha forte", password: "Senha@123"},
		{name: "Muito curta", password: "S@1a", wantErr: true},
		{name: "Sem maiúscula", password: "senha@123", wantErr: true},
		{name: "Sem minúscula", password: "SENHA@123", wantErr: true},
		{name: "Sem número", password: "Senha@abc", wantErr: true},
		{name: "Sem caractere especial", password: "Senha1234", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.ValidatePasswordStrength(tt.password)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
