package handlers

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kamandenj/linkup_social/database"
	"github.com/kamandenj/linkup_social/models"
	"github.com/kamandenj/linkup_social/utils"
)

const maxCaptionLength = 150

type PostResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	Caption   string    `json:"caption"`
	LikeCount int       `json:"like_count"`
	CreatedAt string    `json:"created_at"`
}

func postResponse(p *models.Post) PostResponse {
	return PostResponse{
		ID:        p.ID,
		UserID:    p.UserID,
		Username:  p.User.Username,
		Caption:   p.Caption,
		LikeCount: p.LikeCount,
		CreatedAt: p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func CreatePost(c *fiber.Ctx) error {
	currentUser := c.Locals("currentUser").(*models.User)

	caption := c.FormValue("caption")
	if len(caption) > maxCaptionLength {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Caption is too long"})
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Post image is required"})
	}
	opened, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot read uploaded image"})
	}
	defer opened.Close()
	image, err := io.ReadAll(opened)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot read uploaded image"})
	}

	mime, err := utils.DetectFileType(image)
	if err != nil || !utils.IsImageType(mime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Only image files are allowed!"})
	}

	post := models.Post{
		UserID:    currentUser.ID,
		Image:     image,
		ImageType: mime,
		Caption:   caption,
	}
	if err := database.DB.Create(&post).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create post"})
	}
	return c.Status(fiber.StatusCreated).JSON(postResponse(&post))
}

// GetAllPosts is the feed: newest first, paginated, blocked users hidden.
func GetAllPosts(c *fiber.Ctx) error {
	currentUser := c.Locals("currentUser").(*models.User)
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var posts []models.Post
	err := database.DB.
		Preload("User").
		Joins("JOIN users ON users.id = posts.user_id").
		Where("users.id NOT IN (SELECT blocked_id FROM user_blocks WHERE user_id = ?)", currentUser.ID).
		Where("users.id NOT IN (SELECT user_id FROM user_blocks WHERE blocked_id = ?)", currentUser.ID).
		Order("posts.created_at desc").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&posts).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch posts"})
	}

	out := make([]PostResponse, len(posts))
	for i := range posts {
		out[i] = postResponse(&posts[i])
	}
	return c.JSON(out)
}

func GetUserPosts(c *fiber.Ctx) error {
	currentUser := c.Locals("currentUser").(*models.User)
	var posts []models.Post
	err := database.DB.
		Preload("User").
		Where("user_id = ?", currentUser.ID).
		Order("created_at desc").
		Find(&posts).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch posts"})
	}
	out := make([]PostResponse, len(posts))
	for i := range posts {
		out[i] = postResponse(&posts[i])
	}
	return c.JSON(out)
}

func findOwnPost(c *fiber.Ctx) (*models.Post, error) {
	currentUser := c.Locals("currentUser").(*models.User)
	postID, err := uuid.Parse(c.Params("postId"))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post ID"})
	}
	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post not found"})
	}
	if post.UserID != currentUser.ID {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not your post"})
	}
	return &post, nil
}

func DeletePost(c *fiber.Ctx) error {
	post, err := findOwnPost(c)
	if post == nil {
		return err
	}
	if err := database.DB.Exec("DELETE FROM post_likes WHERE post_id = ?", post.ID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete post"})
	}
	if err := database.DB.Delete(post).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete post"})
	}
	return c.JSON(fiber.Map{"success": "Post deleted successfully"})
}

type UpdatePostRequest struct {
	Caption string `json:"caption" validate:"max=150"`
}

func UpdatePost(c *fiber.Ctx) error {
	post, err := findOwnPost(c)
	if post == nil {
		return err
	}
	var req UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := database.DB.Model(post).Update("caption", req.Caption).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update post"})
	}
	return c.JSON(fiber.Map{"success": "Post updated", "caption": req.Caption})
}

func LikePost(c *fiber.Ctx) error {
	currentUser := c.Locals("currentUser").(*models.User)
	postID, err := uuid.Parse(c.Params("postId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post ID"})
	}
	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post not found"})
	}
	if hasRow("post_likes", "post_id", "user_id", post.ID, currentUser.ID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Post already liked"})
	}

	tx := database.DB.Begin()
	if err := tx.Exec("INSERT INTO post_likes (post_id, user_id) VALUES (?, ?)", post.ID, currentUser.ID).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to like post"})
	}
	if err := tx.Model(&post).Update("like_count", post.LikeCount+1).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to like post"})
	}
	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to like post"})
	}
	return c.JSON(fiber.Map{"success": "Post liked", "like_count": post.LikeCount + 1})
}

func UnlikePost(c *fiber.Ctx) error {
	currentUser := c.Locals("currentUser").(*models.User)
	postID, err := uuid.Parse(c.Params("postId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post ID"})
	}
	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post not found"})
	}
	if !hasRow("post_likes", "post_id", "user_id", post.ID, currentUser.ID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Post not liked yet"})
	}

	tx := database.DB.Begin()
	if err := tx.Exec("DELETE FROM post_likes WHERE post_id = ? AND user_id = ?", post.ID, currentUser.ID).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to unlike post"})
	}
	newCount := post.LikeCount - 1
	if newCount < 0 {
		newCount = 0
	}
	if err := tx.Model(&post).Update("like_count", newCount).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to unlike post"})
	}
	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to unlike post"})
	}
	return c.JSON(fiber.Map{"success": "Post unliked", "like_count": newCount})
}

// DownloadPost streams the stored image with its original type.
func DownloadPost(c *fiber.Ctx) error {
	currentUser := c.Locals("currentUser").(*models.User)
	postID, err := uuid.Parse(c.Params("postId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid post ID"})
	}
	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Post not found"})
	}
	if blockedEitherWay(currentUser.ID, post.UserID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
	}
	c.Set(fiber.HeaderContentType, post.ImageType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "post-"+post.ID.String()))
	return c.Send(post.Image)
}

const postFeedTemplate = `<style>
  .feed { display: flex; flex-direction: column; max-width: 600px; font-family: Arial, sans-serif; }
  .post { margin: 10px 0; border: 1px solid #ccc; border-radius: 10px; overflow: hidden; }
  .post-header { display: flex; justify-content: space-between; padding: 8px 12px; }
  .post img { width: 100%; }
  .caption { padding: 8px 12px; }
  .likes { padding: 0 12px 8px; color: #555; }
</style>
<div class="feed">
{{- range .Posts }}
  <div class="post">
    <div class="post-header"><b>{{ .Username }}</b><span>{{ .CreatedAt }}</span></div>
    <img src="{{ .ImageSrc }}" alt="Post image"/>
    {{- if .Caption }}<div class="caption">{{ .Caption }}</div>{{ end }}
    <div class="likes">{{ .LikeCount }} likes</div>
  </div>
{{- end }}
</div>
`

var postFeedTmpl = template.Must(template.New("feed").Parse(postFeedTemplate))

// GetAllPostsHTML renders the feed as a standalone HTML fragment.
func GetAllPostsHTML(c *fiber.Ctx) error {
	currentUser := c.Locals("currentUser").(*models.User)

	var posts []models.Post
	err := database.DB.
		Preload("User").
		Joins("JOIN users ON users.id = posts.user_id").
		Where("users.id NOT IN (SELECT blocked_id FROM user_blocks WHERE user_id = ?)", currentUser.ID).
		Where("users.id NOT IN (SELECT user_id FROM user_blocks WHERE blocked_id = ?)", currentUser.ID).
		Order("posts.created_at desc").
		Limit(50).
		Find(&posts).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch posts"})
	}

	type feedPost struct {
		Username  string
		CreatedAt string
		Caption   string
		LikeCount int
		ImageSrc  template.URL
	}
	entries := make([]feedPost, len(posts))
	for i := range posts {
		entries[i] = feedPost{
			Username:  posts[i].User.Username,
			CreatedAt: posts[i].CreatedAt.Format("Jan 2, 2006"),
			Caption:   posts[i].Caption,
			LikeCount: posts[i].LikeCount,
			ImageSrc:  template.URL("data:" + posts[i].ImageType + ";base64," + base64.StdEncoding.EncodeToString(posts[i].Image)),
		}
	}

	var buf bytes.Buffer
	if err := postFeedTmpl.Execute(&buf, struct{ Posts []feedPost }{Posts: entries}); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to render feed"})
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(buf.String())
}
