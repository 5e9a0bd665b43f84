package services

import "fmt"

// Notification texts. Reminder text lives in the scheduler.

func taskAssignedMessage(taskName string) string {
	return fmt.Sprintf("You have been assigned a new task: %s", taskName)
}

func taskAddedMessage(taskName, projectName string) string {
	return fmt.Sprintf("A new task %s has been added to project %s", taskName, projectName)
}

func taskCompletedMessage(taskName, username string) string {
	return fmt.Sprintf("Task '%s' has been completed by %s", taskName, username)
}

func invitationReceivedMessage(senderName, projectName string) string {
	return fmt.Sprintf("%s has invited you to join the project %s", senderName, projectName)
}

func invitationAcceptedMessage(username, projectName string) string {
	return fmt.Sprintf("%s has accepted your invitation to join the project %s", username, projectName)
}

func invitationRejectedMessage(username, projectName string) string {
	return fmt.Sprintf("%s has rejected your invitation to join the project %s", username, projectName)
}

func memberJoinedMessage(projectName string) string {
	return fmt.Sprintf("A new member has joined the project %s", projectName)
}

func memberRemovedMessage(projectName string) string {
	return fmt.Sprintf("You have been removed from the project %s", projectName)
}

func projectCompletedMessage(projectName string) string {
	return fmt.Sprintf("The project %s has been marked as completed", projectName)
}

func projectDeletedMessage(projectName string) string {
	return fmt.Sprintf("The project %s has been deleted", projectName)
}
