package types

import "time"

type UserResponse struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Email     *string    `json:"email"`
	FullName  *string    `json:"full_name"`
	Role      string     `json:"role"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type ActivityResponse struct {
	ID            uint       `json:"id"`
	Title         string     `json:"title"`
	Description   *string    `json:"description"`
	InjectedBy    *string    `json:"injected_by"`
	Status        string     `json:"status"`
	AssignedTo    *string    `json:"assigned_to"`
	AssignedEmail *string    `json:"assigned_email"`
	DueDate       *time.Time `json:"due_date"`
	Timestamp     time.Time  `json:"timestamp"`
	UpdatedAt     time.Time  `json:"updated_at"`
	OwnerID       uint       `json:"owner_id"`
}

type PaginatedActivities struct {
	Total   int64              `json:"total"`
	Page    int                `json:"page"`
	PerPage int                `json:"per_page"`
	Items   []ActivityResponse `json:"items"`
}

type SubtaskResponse struct {
	ID          uint       `json:"id"`
	ActivityID  uint       `json:"activity_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	Order       int        `json:"order"`
	CompletedAt *time.Time `json:"completed_at"`
	Timestamp   time.Time  `json:"timestamp"`
}

type HistoryResponse struct {
	ID           uint      `json:"id"`
	ActivityID   uint      `json:"activity_id"`
	ChangedBy    string    `json:"changed_by"`
	ChangedField string    `json:"changed_field"`
	OldValue     *string   `json:"old_value"`
	NewValue     *string   `json:"new_value"`
	Timestamp    time.Time `json:"timestamp"`
}

type FileResponse struct {
	ID         uint      `json:"id"`
	ActivityID uint      `json:"activity_id"`
	Filename   string    `json:"filename"`
	FilePath   string    `json:"file_path"`
	FileSize   int64     `json:"file_size"`
	FileType   string    `json:"file_type"`
	UploadedBy string    `json:"uploaded_by"`
	Timestamp  time.Time `json:"timestamp"`
}

type InvitationResponse struct {
	ID           uint       `json:"id"`
	ActivityID   uint       `json:"activity_id"`
	InvitedEmail string     `json:"invited_email"`
	Token        string     `json:"token"`
	CreatedBy    string     `json:"created_by"`
	AcceptedBy   *string    `json:"accepted_by"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    time.Time  `json:"expires_at"`
	AcceptedAt   *time.Time `json:"accepted_at"`
}

type WebhookResponse struct {
	ID        uint      `json:"id"`
	URL       string    `json:"url"`
	Event     string    `json:"event"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
