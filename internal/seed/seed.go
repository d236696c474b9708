// Package seed populates the database with demo data for local development.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"cifconnect/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	pseudos = []string{
		"night_owl", "campus_ghost", "coffee_addict", "lab_rat", "deadline_dodger",
		"quiet_storm", "bib_dweller", "amphi_sleeper", "ramen_scholar", "late_submitter",
		"front_row", "back_bencher", "group_project_survivor", "exam_season", "thesis_gremlin",
	}

	roomSpecs = []struct {
		Name        string
		Description string
		Icon        string
		Private     bool
	}{
		{"General", "The default public room for everyone.", "chat_bubble", false},
		{"Study Hall", "Silent co-working, loud complaining.", "menu_book", false},
		{"Night Shift", "For the 2am crowd.", "dark_mode", false},
		{"Lost & Found", "Left your charger in B204 again?", "search", false},
		{"Committee", "Event planning, members only.", "lock", true},
	}

	messageSamples = []string{
		"anyone else still awake working on the stats assignment?",
		"the cafeteria coffee machine is broken AGAIN",
		"does someone have last year's midterm for reference?",
		"just saw a raccoon in the courtyard, 10/10 campus wildlife",
		"room B204 is free all afternoon if anyone wants to study",
		"who keeps reserving the good study rooms at 7am",
		"found a USB stick in the library, describe it and it's yours",
		"reminder: course evaluations close friday",
		"is the gym open during exam week?",
		"selling my textbook from last semester, barely opened (obviously)",
	}

	reactionEmojis = []string{"👍", "😂", "❤️", "🔥", "😭", "💀"}
)

// Seeder populates the database with demo data.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewSeeder creates a seeder bound to the given database.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{
		db:  db,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll wipes all application tables in dependency order.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	for _, model := range []interface{}{
		&models.Report{},
		&models.Reaction{},
		&models.Message{},
		&models.RoomMember{},
		&models.Room{},
		&models.User{},
	} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("failed to clear table: %w", err)
		}
	}
	return nil
}

// Run seeds users, rooms, memberships, messages, reactions, and one pending
// report. Every demo account gets the same password.
func (s *Seeder) Run(password string) error {
	users, err := s.createUsers(password)
	if err != nil {
		return err
	}
	rooms, err := s.createRooms(users)
	if err != nil {
		return err
	}
	messages, err := s.createMessages(users, rooms)
	if err != nil {
		return err
	}
	if err := s.addReactions(users, messages); err != nil {
		return err
	}
	return s.createReport(users, messages)
}

func (s *Seeder) createUsers(password string) ([]models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(pseudos)+1)

	admin := models.User{
		Email:    "admin@cifconnect.local",
		Password: string(hashed),
		Pseudo:   "moderation_team",
		Role:     models.RoleAdmin,
	}
	if err := s.db.Create(&admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}
	users = append(users, admin)

	for i, pseudo := range pseudos {
		user := models.User{
			Email:    fmt.Sprintf("user%d@cifconnect.local", i+1),
			Password: string(hashed),
			Pseudo:   pseudo,
			Role:     models.RoleMember,
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", pseudo, err)
		}
		users = append(users, user)
	}

	log.Printf("Created %d users", len(users))
	return users, nil
}

func (s *Seeder) createRooms(users []models.User) ([]models.Room, error) {
	rooms := make([]models.Room, 0, len(roomSpecs))
	for i, spec := range roomSpecs {
		creator := users[i%len(users)]
		room := models.Room{
			Name:        spec.Name,
			Description: spec.Description,
			Icon:        spec.Icon,
			CreatedBy:   &creator.ID,
		}
		if spec.Private {
			key := "cif-" + spec.Name
			room.AccessKey = &key
		}
		if err := s.db.Create(&room).Error; err != nil {
			return nil, fmt.Errorf("failed to create room %s: %w", spec.Name, err)
		}
		rooms = append(rooms, room)

		// Everyone joins General; other rooms get a random subset.
		for _, user := range users {
			if room.Name != "General" && s.rng.Intn(3) != 0 {
				continue
			}
			member := models.RoomMember{RoomID: room.ID, UserID: user.ID}
			if err := s.db.Create(&member).Error; err != nil {
				return nil, fmt.Errorf("failed to add member: %w", err)
			}
		}
	}

	log.Printf("Created %d rooms", len(rooms))
	return rooms, nil
}

func (s *Seeder) createMessages(users []models.User, rooms []models.Room) ([]models.Message, error) {
	var messages []models.Message
	for _, room := range rooms {
		var memberIDs []uint
		if err := s.db.Model(&models.RoomMember{}).Where("room_id = ?", room.ID).
			Pluck("user_id", &memberIDs).Error; err != nil {
			return nil, err
		}
		if len(memberIDs) == 0 {
			continue
		}

		byID := map[uint]models.User{}
		for _, u := range users {
			byID[u.ID] = u
		}

		count := 5 + s.rng.Intn(10)
		var lastID *uint
		for i := 0; i < count; i++ {
			author := byID[memberIDs[s.rng.Intn(len(memberIDs))]]
			msg := models.Message{
				RoomID:            room.ID,
				AuthorID:          author.ID,
				AuthorDisplayName: author.Pseudo,
				Content:           messageSamples[s.rng.Intn(len(messageSamples))],
				MessageType:       models.MessageTypeChat,
			}
			// Occasionally thread under the previous message.
			if lastID != nil && s.rng.Intn(4) == 0 {
				msg.ParentID = lastID
			}
			if err := s.db.Create(&msg).Error; err != nil {
				return nil, fmt.Errorf("failed to create message: %w", err)
			}
			if msg.ParentID == nil {
				id := msg.ID
				lastID = &id
			}
			messages = append(messages, msg)
		}
	}

	log.Printf("Created %d messages", len(messages))
	return messages, nil
}

func (s *Seeder) addReactions(users []models.User, messages []models.Message) error {
	count := 0
	for _, msg := range messages {
		for _, user := range users {
			if s.rng.Intn(5) != 0 {
				continue
			}
			reaction := models.Reaction{
				MessageID: msg.ID,
				UserID:    user.ID,
				Emoji:     reactionEmojis[s.rng.Intn(len(reactionEmojis))],
			}
			if err := s.db.Create(&reaction).Error; err != nil {
				return fmt.Errorf("failed to create reaction: %w", err)
			}
			count++
		}
	}
	log.Printf("Created %d reactions", count)
	return nil
}

func (s *Seeder) createReport(users []models.User, messages []models.Message) error {
	if len(messages) == 0 || len(users) < 2 {
		return nil
	}
	msg := messages[s.rng.Intn(len(messages))]
	var reporter models.User
	for _, u := range users {
		if u.ID != msg.AuthorID {
			reporter = u
			break
		}
	}
	report := models.Report{
		ReporterID: &reporter.ID,
		ReportedID: &msg.AuthorID,
		MessageID:  &msg.ID,
		Reason:     "Demo report for the moderation dashboard",
		Status:     models.ReportStatusPending,
	}
	if err := s.db.Create(&report).Error; err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	log.Println("Created 1 pending report")
	return nil
}
