package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// defaultConfigYAML используется, когда config.yaml не найден.
// Ссылается на те же переменные окружения, что и исходное приложение.
//
//go:embed default.yaml
var defaultConfigYAML string

// AppConfig - корневая структура конфигурации.
// Она зеркалит структуру config.yaml.
type AppConfig struct {
	Models  ModelsConfig          `yaml:"models"`
	Tools   map[string]ToolConfig `yaml:"tools"`
	Mail    MailConfig            `yaml:"mail"`
	Search  SearchConfig          `yaml:"search"`
	Report  ReportConfig          `yaml:"report"`
	Agent   AgentConfig           `yaml:"agent"`
	S3      S3Config              `yaml:"s3"`
	Journal JournalConfig         `yaml:"journal"`
	Web     WebConfig             `yaml:"web"`
	App     AppSpecific           `yaml:"app"`
}

// ModelsConfig - настройки AI моделей.
type ModelsConfig struct {
	DefaultChat string              `yaml:"default_chat"` // Алиас для чата по умолчанию (например, "gpt-4o")
	Definitions map[string]ModelDef `yaml:"definitions"`  // Словарь определений моделей
}

// ModelDef - параметры конкретной модели.
type ModelDef struct {
	Provider    string        `yaml:"provider"`   // "openai", "zai" и т.д.
	ModelName   string        `yaml:"model_name"` // Реальное имя в API
	APIKey      string        `yaml:"api_key"`    // Поддерживает ${VAR}
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"` // "60s", "2m"
	BaseURL     string        `yaml:"base_url"`
}

// ToolConfig - настройки инструментов.
type ToolConfig struct {
	Enabled bool          `yaml:"enabled"`
	Timeout time.Duration `yaml:"timeout"`
}

// MailConfig - координаты SMTP релея и отправителя.
//
// Все поля поддерживают ${VAR}: по умолчанию EMAIL_ADDRESS, EMAIL_PASSWORD,
// SMTP_SERVER и SMTP_PORT.
type MailConfig struct {
	Address  string        `yaml:"address"`  // Адрес отправителя, он же логин
	Password string        `yaml:"password"` // Пароль приложения
	Server   string        `yaml:"server"`   // Хост релея
	Port     int           `yaml:"port"`     // 587 если не задан
	Timeout  time.Duration `yaml:"timeout"`  // Таймаут соединения
}

// GetDefaults возвращает копию с заполненными дефолтами.
func (c *MailConfig) GetDefaults() MailConfig {
	result := *c

	if result.Port == 0 {
		result.Port = 587
	}
	if result.Timeout == 0 {
		result.Timeout = 30 * time.Second
	}

	return result
}

// SearchConfig - настройки веб-поиска.
type SearchConfig struct {
	Endpoint   string        `yaml:"endpoint"`    // URL lite-версии DuckDuckGo
	MaxResults int           `yaml:"max_results"` // Сколько результатов отдавать LLM
	RateLimit  float64       `yaml:"rate_limit"`  // Запросов в секунду
	Timeout    time.Duration `yaml:"timeout"`     // Timeout HTTP запросов ("15s")
	UserAgent  string        `yaml:"user_agent"`
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *SearchConfig) GetDefaults() SearchConfig {
	result := *c

	if result.Endpoint == "" {
		result.Endpoint = "https://lite.duckduckgo.com/lite/"
	}
	if result.MaxResults == 0 {
		result.MaxResults = 5
	}
	if result.RateLimit == 0 {
		result.RateLimit = 1
	}
	if result.Timeout == 0 {
		result.Timeout = 15 * time.Second
	}
	if result.UserAgent == "" {
		result.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}

	return result
}

// ReportConfig - настройки PDF отчёта.
type ReportConfig struct {
	OutputDir    string `yaml:"output_dir"`    // Куда писать файлы (по умолчанию текущая директория)
	WrapWidth    int    `yaml:"wrap_width"`    // Ширина переноса строк в символах
	DefaultTitle string `yaml:"default_title"` // Заголовок, если LLM его не передала
	FileName     string `yaml:"file_name"`     // Имя файла, которое требует промпт
	Title        string `yaml:"title"`         // Заголовок, который требует промпт
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *ReportConfig) GetDefaults() ReportConfig {
	result := *c

	if result.OutputDir == "" {
		result.OutputDir = "."
	}
	if result.WrapWidth == 0 {
		result.WrapWidth = 90
	}
	if result.DefaultTitle == "" {
		result.DefaultTitle = "Document"
	}
	if result.FileName == "" {
		result.FileName = "market_trends_report.pdf"
	}
	if result.Title == "" {
		result.Title = "Market Trends Report"
	}

	return result
}

// AgentConfig - параметры ReAct цикла.
type AgentConfig struct {
	MaxIterations int           `yaml:"max_iterations"`
	ToolTimeout   time.Duration `yaml:"tool_timeout"`
	Prompt        string        `yaml:"prompt"` // Файл промпта в prompts_dir, пусто = встроенный
}

// GetDefaults возвращает дефолтные значения для незаполненных полей.
func (c *AgentConfig) GetDefaults() AgentConfig {
	result := *c

	if result.MaxIterations == 0 {
		result.MaxIterations = 10
	}
	if result.ToolTimeout == 0 {
		result.ToolTimeout = 60 * time.Second
	}

	return result
}

// S3Config - настройки объектного хранилища для архива отчётов.
// Пустой bucket отключает архив.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`     // Префикс ключей, например "reports/"
	AccessKey string `yaml:"access_key"` // Поддерживает ${VAR}
	SecretKey string `yaml:"secret_key"` // Поддерживает ${VAR}
	UseSSL    bool   `yaml:"use_ssl"`
}

// Enabled сообщает, настроен ли архив.
func (c *S3Config) Enabled() bool {
	return c.Bucket != ""
}

// JournalConfig - журнал запусков в SQLite. Пустой path отключает журнал.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// WebConfig - настройки web-формы (-serve).
type WebConfig struct {
	Addr string `yaml:"addr"`
}

// AppSpecific - общие настройки приложения.
type AppSpecific struct {
	Debug      bool   `yaml:"debug"`
	PromptsDir string `yaml:"prompts_dir"`
}

// Load читает YAML файл, подставляет ENV переменные и возвращает готовую структуру.
//
// Перед чтением подгружает .env из текущей директории (если есть).
// Если файла конфигурации нет, используется встроенный default.yaml.
func Load(path string) (*AppConfig, error) {
	// 1. .env не обязателен
	_ = godotenv.Load()

	// 2. Читаем файл или берём встроенный дефолт
	raw := defaultConfigYAML
	if path != "" {
		rawBytes, err := os.ReadFile(path)
		switch {
		case err == nil:
			raw = string(rawBytes)
		case os.IsNotExist(err):
			// остаёмся на встроенной конфигурации
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return Parse(raw)
}

// Parse парсит YAML и подставляет переменные окружения в значения.
//
// Подстановка идёт после разбора: значение переменной (пароль с '#',
// ': ' или '[') не может сломать синтаксис YAML.
func Parse(raw string) (*AppConfig, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	expandEnv(&doc)

	var cfg AppConfig
	if doc.Kind != 0 {
		if err := doc.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// expandEnv заменяет ${VAR} и $VAR в скалярах дерева.
//
// У plain скаляра с подстановкой сбрасывается тег: тип определяется
// заново по итоговому значению ("2525" -> int, "" -> null).
// Значения в кавычках и литерал null из переменной остаются строками.
func expandEnv(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode {
		expanded := os.ExpandEnv(n.Value)
		if expanded == n.Value {
			return
		}
		n.Value = expanded
		if n.Style != 0 {
			return
		}
		switch expanded {
		case "~", "null", "Null", "NULL":
			n.Tag = "!!str"
		default:
			n.Tag = ""
		}
		return
	}
	for _, child := range n.Content {
		expandEnv(child)
	}
}

// validate проверяет обязательные поля.
//
// Креденшалы почты и ключ модели здесь не проверяются: почта проверяется
// в момент отправки, ключ модели - при создании агента.
func (c *AppConfig) validate() error {
	if c.Models.DefaultChat == "" {
		return fmt.Errorf("models.default_chat is required")
	}
	if _, ok := c.Models.Definitions[c.Models.DefaultChat]; !ok {
		return fmt.Errorf("default_chat model '%s' is not defined in definitions", c.Models.DefaultChat)
	}
	if c.Mail.Port < 0 || c.Mail.Port > 65535 {
		return fmt.Errorf("mail.port out of range: %d", c.Mail.Port)
	}
	if c.Report.WrapWidth < 0 {
		return fmt.Errorf("report.wrap_width must be positive")
	}
	if c.S3.Enabled() && c.S3.Endpoint == "" {
		return fmt.Errorf("s3.endpoint is required when s3.bucket is set")
	}
	return nil
}

// GetChatModel возвращает конфигурацию модели по умолчанию или по имени.
func (c *AppConfig) GetChatModel(name string) (ModelDef, bool) {
	if name == "" {
		name = c.Models.DefaultChat
	}
	m, ok := c.Models.Definitions[name]
	return m, ok
}

// IsToolEnabled проверяет секцию tools. Инструмент без записи считается включённым.
func (c *AppConfig) IsToolEnabled(name string) bool {
	tc, ok := c.Tools[name]
	if !ok {
		return true
	}
	return tc.Enabled
}

// ToolTimeout возвращает индивидуальный timeout инструмента (0 если не задан).
func (c *AppConfig) ToolTimeout(name string) time.Duration {
	return c.Tools[name].Timeout
}
