package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/segmentio/kafka-go"
)

// Client state errors.
var (
	// ErrNoBrokers is returned by NewClient when no broker address is configured
	ErrNoBrokers = errors.New("no brokers configured")

	// ErrNotSubscribed is returned by Poll and CommitSync before Subscribe
	ErrNotSubscribed = errors.New("consumer is not subscribed")

	// ErrAlreadySubscribed is returned when Subscribe is called twice
	ErrAlreadySubscribed = errors.New("consumer is already subscribed")

	// ErrClientClosed is returned by every operation after Close
	ErrClientClosed = errors.New("client is closed")

	// ErrSeekOutsideAssignment is returned by Seek outside the assignment callback
	// or for a partition that is not part of the assignment
	ErrSeekOutsideAssignment = errors.New("seek outside of partition assignment")

	// ErrInvalidOffset is returned by Seek for a negative offset
	ErrInvalidOffset = errors.New("invalid offset")
)

// Translated broker and transport errors.
var (
	// ErrConnectionFailed is returned when connection to Kafka cannot be established
	ErrConnectionFailed = errors.New("connection failed")

	// ErrConnectionLost is returned when connection to Kafka is lost
	ErrConnectionLost = errors.New("connection lost")

	// ErrBrokerNotAvailable is returned when broker is not available
	ErrBrokerNotAvailable = errors.New("broker not available")

	// ErrAuthenticationFailed is returned when authentication fails
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrAuthorizationFailed is returned when authorization fails
	ErrAuthorizationFailed = errors.New("authorization failed")

	// ErrTopicNotFound is returned when topic doesn't exist
	ErrTopicNotFound = errors.New("topic not found")

	// ErrPartitionNotFound is returned when partition doesn't exist
	ErrPartitionNotFound = errors.New("partition not found")

	// ErrGroupCoordinatorNotAvailable is returned when group coordinator is not available
	ErrGroupCoordinatorNotAvailable = errors.New("group coordinator not available")

	// ErrNotGroupCoordinator is returned when broker is not the group coordinator
	ErrNotGroupCoordinator = errors.New("not group coordinator")

	// ErrInvalidGroupID is returned when group ID is invalid
	ErrInvalidGroupID = errors.New("invalid group id")

	// ErrUnknownMemberID is returned when member ID is unknown
	ErrUnknownMemberID = errors.New("unknown member id")

	// ErrIllegalGeneration is returned when a commit targets a stale generation
	ErrIllegalGeneration = errors.New("illegal generation")

	// ErrRebalanceInProgress is returned when rebalance is in progress
	ErrRebalanceInProgress = errors.New("rebalance in progress")

	// ErrGenerationEnded is returned when the generation ended under an operation
	ErrGenerationEnded = errors.New("generation ended")

	// ErrGroupClosed is returned when the consumer group was closed under an operation
	ErrGroupClosed = errors.New("consumer group closed")

	// ErrOffsetOutOfRange is returned when offset is out of range
	ErrOffsetOutOfRange = errors.New("offset out of range")

	// ErrInvalidCommitOffset is returned when commit offset is invalid
	ErrInvalidCommitOffset = errors.New("invalid commit offset")

	// ErrMessageTooLarge is returned when a record exceeds the fetch size
	ErrMessageTooLarge = errors.New("message too large")

	// ErrLeaderNotAvailable is returned when leader is not available
	ErrLeaderNotAvailable = errors.New("leader not available")

	// ErrNotLeaderForPartition is returned when broker is not the leader for partition
	ErrNotLeaderForPartition = errors.New("not leader for partition")

	// ErrRequestTimedOut is returned when request times out
	ErrRequestTimedOut = errors.New("request timed out")

	// ErrNetworkError is returned for network-related errors
	ErrNetworkError = errors.New("network error")

	// ErrUnsupportedVersion is returned when version is not supported
	ErrUnsupportedVersion = errors.New("unsupported version")
)

// TranslateError maps kafka-go and transport errors onto the sentinels of
// this package. The returned error wraps both the sentinel and the original
// error. Context errors and unknown errors are returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	sentinel := translateKafkaError(err)
	if sentinel == nil {
		sentinel = translateByErrorMessage(strings.ToLower(err.Error()))
	}
	if sentinel == nil || errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// translateKafkaError maps protocol error codes and kafka-go's own sentinels.
func translateKafkaError(err error) error {
	switch {
	case errors.Is(err, kafka.ErrGroupClosed):
		return ErrGroupClosed
	case errors.Is(err, kafka.ErrGenerationEnded):
		return ErrGenerationEnded
	}

	var kerr kafka.Error
	if !errors.As(err, &kerr) {
		return nil
	}

	switch kerr {
	case kafka.SASLAuthenticationFailed:
		return ErrAuthenticationFailed
	case kafka.TopicAuthorizationFailed, kafka.GroupAuthorizationFailed, kafka.ClusterAuthorizationFailed:
		return ErrAuthorizationFailed
	case kafka.UnknownTopicOrPartition:
		return ErrTopicNotFound
	case kafka.GroupCoordinatorNotAvailable:
		return ErrGroupCoordinatorNotAvailable
	case kafka.NotCoordinatorForGroup:
		return ErrNotGroupCoordinator
	case kafka.InvalidGroupId:
		return ErrInvalidGroupID
	case kafka.UnknownMemberId:
		return ErrUnknownMemberID
	case kafka.IllegalGeneration:
		return ErrIllegalGeneration
	case kafka.RebalanceInProgress:
		return ErrRebalanceInProgress
	case kafka.OffsetOutOfRange:
		return ErrOffsetOutOfRange
	case kafka.InvalidCommitOffsetSize:
		return ErrInvalidCommitOffset
	case kafka.MessageSizeTooLarge:
		return ErrMessageTooLarge
	case kafka.LeaderNotAvailable:
		return ErrLeaderNotAvailable
	case kafka.NotLeaderForPartition:
		return ErrNotLeaderForPartition
	case kafka.RequestTimedOut:
		return ErrRequestTimedOut
	case kafka.BrokerNotAvailable:
		return ErrBrokerNotAvailable
	case kafka.UnsupportedVersion:
		return ErrUnsupportedVersion
	default:
		return nil
	}
}

// translateByErrorMessage translates errors based on error message patterns
func translateByErrorMessage(errMsg string) error {
	switch {
	// Connection related
	case strings.Contains(errMsg, "connection refused"):
		return ErrConnectionFailed
	case strings.Contains(errMsg, "connection reset"):
		return ErrConnectionLost
	case strings.Contains(errMsg, "connection closed"):
		return ErrConnectionLost
	case strings.Contains(errMsg, "broker not available"):
		return ErrBrokerNotAvailable

	// Authentication and authorization
	case strings.Contains(errMsg, "authentication failed"):
		return ErrAuthenticationFailed
	case strings.Contains(errMsg, "authorization failed"):
		return ErrAuthorizationFailed

	// Topic and partition errors
	case strings.Contains(errMsg, "topic not found"):
		return ErrTopicNotFound
	case strings.Contains(errMsg, "unknown topic"):
		return ErrTopicNotFound
	case strings.Contains(errMsg, "partition not found"):
		return ErrPartitionNotFound
	case strings.Contains(errMsg, "unknown partition"):
		return ErrPartitionNotFound

	// Consumer group errors
	case strings.Contains(errMsg, "group coordinator not available"):
		return ErrGroupCoordinatorNotAvailable
	case strings.Contains(errMsg, "not coordinator for group"):
		return ErrNotGroupCoordinator
	case strings.Contains(errMsg, "rebalance in progress"):
		return ErrRebalanceInProgress

	// Offset errors
	case strings.Contains(errMsg, "offset out of range"):
		return ErrOffsetOutOfRange

	// Leader errors
	case strings.Contains(errMsg, "leader not available"):
		return ErrLeaderNotAvailable
	case strings.Contains(errMsg, "not leader for partition"):
		return ErrNotLeaderForPartition

	// Timeout errors
	case strings.Contains(errMsg, "request timed out"):
		return ErrRequestTimedOut
	case strings.Contains(errMsg, "i/o timeout"):
		return ErrNetworkError

	// Network errors
	case strings.Contains(errMsg, "network"):
		return ErrNetworkError
	case strings.Contains(errMsg, "dial"):
		return ErrNetworkError

	default:
		return nil
	}
}

// IsRetryableError returns true if the error is transient. The audit never
// retries; the classification is reported in logs only.
func IsRetryableError(err error) bool {
	switch {
	case errors.Is(err, ErrConnectionFailed),
		errors.Is(err, ErrConnectionLost),
		errors.Is(err, ErrBrokerNotAvailable),
		errors.Is(err, ErrLeaderNotAvailable),
		errors.Is(err, ErrNotLeaderForPartition),
		errors.Is(err, ErrRequestTimedOut),
		errors.Is(err, ErrNetworkError),
		errors.Is(err, ErrGroupCoordinatorNotAvailable),
		errors.Is(err, ErrNotGroupCoordinator),
		errors.Is(err, ErrRebalanceInProgress):
		return true
	default:
		return false
	}
}

// IsAuthenticationError returns true if the error is authentication-related
func IsAuthenticationError(err error) bool {
	switch {
	case errors.Is(err, ErrAuthenticationFailed),
		errors.Is(err, ErrAuthorizationFailed):
		return true
	default:
		return false
	}
}
