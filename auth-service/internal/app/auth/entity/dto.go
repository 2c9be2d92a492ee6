package entity

// RegisterRequest - запрос на регистрацию
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required,min=2"`
	Role     Role   `json:"role" binding:"required,oneof=guest host"`
}

// LoginRequest - запрос на вход
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest - запрос на обновление токенов
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthResponse - ответ с пользователем и токенами
type AuthResponse struct {
	User   User      `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

// TokenValidationResponse - результат проверки access токена
type TokenValidationResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// UpdateUserRequest - запрос на обновление профиля учетной записи
type UpdateUserRequest struct {
	Name  string `json:"name,omitempty" binding:"omitempty,min=2"`
	Email string `json:"email,omitempty" binding:"omitempty,email"`
}

// UpdatePasswordRequest - запрос на смену пароля
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// UpdateRoleRequest - запрос администратора на смену роли пользователя
type UpdateRoleRequest struct {
	Role Role `json:"role" binding:"required,oneof=guest host admin"`
}

// UserListResponse - страница пользователей для админки
type UserListResponse struct {
	Users  []User `json:"users"`
	Total  int    `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// ErrorResponse - стандартный ответ об ошибке
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse - стандартный ответ об успехе
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
