package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
	// 0 表示连接不过期
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// MQTTConfig MQTT配置
type MQTTConfig struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	QoS            byte
	ConnectTimeout time.Duration
}

// GetDSN returns the lib/pq connection string.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// SetDefaults registers the database defaults under the given env prefix.
func (c *DatabaseConfig) SetDefaults(v *viper.Viper, prefix string) {
	v.SetDefault(prefix+"_HOST", "localhost")
	v.SetDefault(prefix+"_PORT", 5432)
	v.SetDefault(prefix+"_USER", "postgres")
	v.SetDefault(prefix+"_PASSWORD", "postgres")
	v.SetDefault(prefix+"_NAME", "baymax")
	v.SetDefault(prefix+"_SSLMODE", "disable")
	v.SetDefault(prefix+"_MAX_CONNS", 10)
	v.SetDefault(prefix+"_MAX_IDLE", 5)
	v.SetDefault(prefix+"_CONN_MAX_LIFETIME", "30m")
	v.SetDefault(prefix+"_PING_TIMEOUT", "5s")
}

// Load 从环境变量加载数据库配置
func (c *DatabaseConfig) Load(v *viper.Viper, prefix string) {
	c.Host = v.GetString(prefix + "_HOST")
	c.Port = v.GetInt(prefix + "_PORT")
	c.User = v.GetString(prefix + "_USER")
	c.Password = v.GetString(prefix + "_PASSWORD")
	c.Database = v.GetString(prefix + "_NAME")
	c.SSLMode = v.GetString(prefix + "_SSLMODE")
	c.MaxConns = v.GetInt(prefix + "_MAX_CONNS")
	c.MaxIdle = v.GetInt(prefix + "_MAX_IDLE")
	c.ConnMaxLifetime = v.GetDuration(prefix + "_CONN_MAX_LIFETIME")
	c.PingTimeout = v.GetDuration(prefix + "_PING_TIMEOUT")
}

// SetDefaults registers the Redis defaults under the given env prefix.
func (c *RedisConfig) SetDefaults(v *viper.Viper, prefix string) {
	v.SetDefault(prefix+"_ADDR", "localhost:6379")
	v.SetDefault(prefix+"_PASSWORD", "")
	v.SetDefault(prefix+"_DB", 0)
	v.SetDefault(prefix+"_POOL_SIZE", 10)
	v.SetDefault(prefix+"_DIAL_TIMEOUT", "5s")
	v.SetDefault(prefix+"_READ_TIMEOUT", "3s")
	v.SetDefault(prefix+"_WRITE_TIMEOUT", "3s")
}

// Load 从环境变量加载Redis配置
func (c *RedisConfig) Load(v *viper.Viper, prefix string) {
	c.Addr = v.GetString(prefix + "_ADDR")
	c.Password = v.GetString(prefix + "_PASSWORD")
	c.DB = v.GetInt(prefix + "_DB")
	c.PoolSize = v.GetInt(prefix + "_POOL_SIZE")
	c.DialTimeout = v.GetDuration(prefix + "_DIAL_TIMEOUT")
	c.ReadTimeout = v.GetDuration(prefix + "_READ_TIMEOUT")
	c.WriteTimeout = v.GetDuration(prefix + "_WRITE_TIMEOUT")
}

// SetDefaults registers the MQTT defaults under the given env prefix.
func (c *MQTTConfig) SetDefaults(v *viper.Viper, prefix string) {
	v.SetDefault(prefix+"_BROKER", "tcp://localhost:1883")
	v.SetDefault(prefix+"_CLIENT_ID", "baymax-ingest")
	v.SetDefault(prefix+"_USERNAME", "")
	v.SetDefault(prefix+"_PASSWORD", "")
	v.SetDefault(prefix+"_QOS", 1)
	v.SetDefault(prefix+"_CONNECT_TIMEOUT", "10s")
}

// Load 从环境变量加载MQTT配置
func (c *MQTTConfig) Load(v *viper.Viper, prefix string) {
	c.Broker = v.GetString(prefix + "_BROKER")
	c.ClientID = v.GetString(prefix + "_CLIENT_ID")
	c.Username = v.GetString(prefix + "_USERNAME")
	c.Password = v.GetString(prefix + "_PASSWORD")
	c.QoS = byte(v.GetUint(prefix + "_QOS"))
	c.ConnectTimeout = v.GetDuration(prefix + "_CONNECT_TIMEOUT")
}
